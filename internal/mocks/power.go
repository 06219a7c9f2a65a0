package mocks

import "github.com/rwx-research/tirag/internal/errors"

type Power struct {
	MockShutdown func() error
	MockReboot   func() error
}

func (p *Power) Shutdown() error {
	if p.MockShutdown != nil {
		return p.MockShutdown()
	}

	return errors.New("MockShutdown was not configured")
}

func (p *Power) Reboot() error {
	if p.MockReboot != nil {
		return p.MockReboot()
	}

	return errors.New("MockReboot was not configured")
}

type Closer struct {
	MockClose func() error
	Closed    int
}

func (c *Closer) Close() error {
	c.Closed++
	if c.MockClose != nil {
		return c.MockClose()
	}

	return nil
}
