// Package idle turns the display off after a period without user input.
package idle

import "time"

// DefaultDelay is the inactivity period before the display sleeps.
const DefaultDelay = 30 * time.Second

// Power is the display power switch.
type Power interface {
	Sleep()
	Wake()
}

// Policy tracks user input and switches display power.
//
// The display is only touched on a state change, so calling Update every
// tick costs nothing while the state is stable. A zero delay disables
// sleeping.
type Policy struct {
	power  Power
	clock  Clock
	delay  time.Duration
	last   time.Time
	asleep bool
}

// NewPolicy creates a policy that considers the display awake and the last
// input to have happened now.
func NewPolicy(power Power, clock Clock, delay time.Duration) *Policy {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Policy{
		power: power,
		clock: clock,
		delay: delay,
		last:  clock.Now(),
	}
}

// Update records whether user input happened since the last call and wakes
// or sleeps the display accordingly.
func (p *Policy) Update(input bool) {
	now := p.clock.Now()
	if input {
		p.last = now
		if p.asleep {
			p.asleep = false
			p.power.Wake()
		}
		return
	}
	p.evaluate(now)
}

// SetDelay changes the inactivity period and re-evaluates immediately.
// A display that is asleep stays asleep until the next input.
func (p *Policy) SetDelay(delay time.Duration) {
	p.delay = delay
	p.evaluate(p.clock.Now())
}

// Delay returns the inactivity period.
func (p *Policy) Delay() time.Duration {
	return p.delay
}

// Asleep reports whether the policy put the display to sleep.
func (p *Policy) Asleep() bool {
	return p.asleep
}

// LastInput returns the time of the most recent input.
func (p *Policy) LastInput() time.Time {
	return p.last
}

func (p *Policy) evaluate(now time.Time) {
	if p.asleep || p.delay <= 0 {
		return
	}
	if now.Sub(p.last) > p.delay {
		p.asleep = true
		p.power.Sleep()
	}
}
