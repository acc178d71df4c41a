// Package bridge exposes the feature store to agent sessions as a tool. The
// agent reports lifecycle transitions (verified, waiting_approval) through
// it instead of editing the feature list file directly.
package bridge

import (
	"context"
	"fmt"

	"github.com/neutrobox/automaker/pkg/agent/tools"
	"github.com/neutrobox/automaker/pkg/feature"
)

// UpdateFeatureStatusArgs represents the arguments for the update feature
// status tool.
type UpdateFeatureStatusArgs struct {
	FeatureID string `xml:"feature_id"`
	Status    string `xml:"status"`
	Summary   string `xml:"summary"`
}

// UpdateFeatureStatusTool lets the agent persist a feature's lifecycle
// state. The tool is bound to the feature the session is working on, so
// feature_id may be omitted in the call.
type UpdateFeatureStatusTool struct {
	store     *feature.Store
	featureID string
}

// NewUpdateFeatureStatusTool creates the tool bound to the given feature.
func NewUpdateFeatureStatusTool(store *feature.Store, featureID string) *UpdateFeatureStatusTool {
	return &UpdateFeatureStatusTool{store: store, featureID: featureID}
}

func (t *UpdateFeatureStatusTool) Name() string {
	return "update_feature_status"
}

func (t *UpdateFeatureStatusTool) Description() string {
	return "Update the status of the feature you are working on. Use status 'verified' when the feature is implemented and its tests pass, 'waiting_approval' when the feature is complete but requires human review, or 'in_progress' while work continues. Optionally include a summary of the work."
}

func (t *UpdateFeatureStatusTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"feature_id": map[string]interface{}{
			"type":        "string",
			"description": "The feature to update. Defaults to the feature assigned to this session.",
		},
		"status": map[string]interface{}{
			"type":        "string",
			"description": "The new status",
			"enum":        []string{string(feature.StatusBacklog), string(feature.StatusInProgress), string(feature.StatusWaitingApproval), string(feature.StatusVerified)},
		},
		"summary": map[string]interface{}{
			"type":        "string",
			"description": "A concise summary of the work done on this feature",
		},
	}, []string{"status"})
}

func (t *UpdateFeatureStatusTool) Execute(ctx context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var args UpdateFeatureStatusArgs
	if err := tools.UnmarshalXMLWithFallback(argumentsXML, &args); err != nil {
		return "", nil, fmt.Errorf("failed to parse update feature status arguments: %w", err)
	}

	featureID := args.FeatureID
	if featureID == "" {
		featureID = t.featureID
	}
	if featureID == "" {
		return "", nil, fmt.Errorf("feature_id is required")
	}

	status := feature.Status(args.Status)
	if !feature.ValidStatus(status) {
		return "", nil, fmt.Errorf("invalid status %q: must be one of backlog, in_progress, waiting_approval, verified", args.Status)
	}

	if err := t.store.UpdateStatus(featureID, status, args.Summary); err != nil {
		return "", nil, fmt.Errorf("failed to update feature %s: %w", featureID, err)
	}

	metadata := map[string]interface{}{
		"feature_id": featureID,
		"status":     args.Status,
	}
	return fmt.Sprintf("Feature %s status updated to %s.", featureID, args.Status), metadata, nil
}

// IsLoopBreaking returns false: reporting status does not end the session.
func (t *UpdateFeatureStatusTool) IsLoopBreaking() bool {
	return false
}
