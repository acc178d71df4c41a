package engine

import (
	"github.com/neutrobox/automaker/pkg/agent"
	"github.com/neutrobox/automaker/pkg/llm"
	"github.com/neutrobox/automaker/pkg/logging"
)

// providerOpener builds real agent sessions over an LLM provider.
type providerOpener struct {
	provider llm.Provider
	log      *logging.Logger
}

// NewSessionOpener creates an Opener that builds agent sessions over the
// given provider.
func NewSessionOpener(provider llm.Provider, log *logging.Logger) Opener {
	return &providerOpener{provider: provider, log: log}
}

func (o *providerOpener) Open(config agent.Config) (Session, error) {
	return agent.NewSession(o.provider, config, o.log)
}
