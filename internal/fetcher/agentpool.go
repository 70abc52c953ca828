package fetcher

import (
	"math/rand"
	"sync"
)

// AgentPool hands out user agents uniformly at random. One pool serves the
// whole process: every component that identifies itself to a site (the
// fetcher and the robots gate) draws from it, and a page's robots decision
// and its HTTP request always share the same pick.
type AgentPool struct {
	mu     sync.Mutex
	agents []string
	rng    *rand.Rand
}

func NewAgentPool(agents []string, randomSeed int64) *AgentPool {
	return &AgentPool{
		agents: agents,
		rng:    rand.New(rand.NewSource(randomSeed)),
	}
}

// Pick returns one agent string from the pool.
func (p *AgentPool) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.agents[p.rng.Intn(len(p.agents))]
}
