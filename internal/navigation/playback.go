package navigation

import "time"

// Playback steps through keyframe-only media one frame per tick.
type Playback struct {
	scheduler        *Scheduler
	frame            int
	durationInFrames int
	advance          func(frame int)
	onEnd            func()
}

// newPlayback expects newScheduler to run the tick on the controller's
// event thread.
func newPlayback(fps float64, durationInFrames int, newScheduler func(time.Duration, func()) *Scheduler, advance func(int), onEnd func()) *Playback {
	p := &Playback{
		durationInFrames: durationInFrames,
		advance:          advance,
		onEnd:            onEnd,
	}
	p.scheduler = newScheduler(PeriodFromRate(fps), p.tick)
	return p
}

func (p *Playback) IsActive() bool {
	return p.scheduler.IsActive()
}

func (p *Playback) Start(frame int) {
	p.frame = frame
	p.scheduler.Start()
}

func (p *Playback) Stop() {
	p.scheduler.Stop()
}

// Seek keeps the playing frame in step with cursor writes from other sources.
func (p *Playback) Seek(frame int) {
	p.frame = frame
}

func (p *Playback) tick() {
	if !p.scheduler.IsActive() {
		return
	}

	if p.frame+1 <= p.durationInFrames {
		p.frame++
		p.advance(p.frame)
		return
	}

	p.scheduler.Stop()
	if p.onEnd != nil {
		p.onEnd()
	}
}
