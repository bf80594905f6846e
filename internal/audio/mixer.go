package audio

import (
	"sync"
	"time"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

// HandleID names a single playing sound. Zero is never issued.
type HandleID uint32

// GroupID names a mixer group. Zero is the always-present default group.
type GroupID int

// DefaultGroup is created automatically by NewSoundMixer.
const DefaultGroup GroupID = 0

// Group carries the gain and mute/solo state shared by every handle
// assigned to it.
type Group struct {
	Name         string
	MasterVolume float64
	Volume       float64
	Mute         bool
	Solo         bool
}

// fade linearly interpolates a handle's per-handle volume over a number of
// frames, in linear gain space, optionally stopping the handle on arrival.
type fade struct {
	startVolume, endVolume float64
	totalFrames            int
	elapsedFrames          int
	autoStopOnFinish       bool
}

func (f *fade) value() float64 {
	if f.totalFrames <= 0 {
		return f.endVolume
	}
	t := float64(f.elapsedFrames) / float64(f.totalFrames)
	if t > 1 {
		t = 1
	}
	return f.startVolume + (f.endVolume-f.startVolume)*t
}

func (f *fade) finished() bool { return f.elapsedFrames >= f.totalFrames }

type handle struct {
	backend         Buffer
	group           GroupID
	perHandleVolume float64
	fade            *fade
	destroyOnStop   bool
}

// SoundMixer owns every playing sound, the group table, and the master
// mute/solo state. Group/handle/fade management has no counterpart in the
// sound engine this package is otherwise grounded on; see DESIGN.md.
type SoundMixer struct {
	mu         sync.Mutex
	logger     *debug.Logger
	groups     map[GroupID]*Group
	nextGroup  GroupID
	handles    map[HandleID]*handle
	nextHandle HandleID
	soloGroup  GroupID
	soloActive bool
	masterMute bool
	masterVol  float64
	pending    []HandleID // scheduled for deferred deletion at end of frame

	device       Device
	outputFormat SampleFormat
	workerStop   chan struct{}
	workerDone   chan struct{}
}

// NewSoundMixer creates a mixer with a single default group and master
// volume at unity gain. The output device defaults to NullDevice; call
// SetDevice to attach a real one before StartStreamingWorker.
func NewSoundMixer(logger *debug.Logger) *SoundMixer {
	m := &SoundMixer{
		logger:       logger,
		groups:       map[GroupID]*Group{DefaultGroup: {Name: "master", MasterVolume: 1, Volume: 1}},
		nextGroup:    DefaultGroup + 1,
		handles:      map[HandleID]*handle{},
		masterVol:    1,
		device:       NullDevice{},
		outputFormat: SampleFormat{Channels: 2, SampleRate: 44100},
	}
	return m
}

// SetDevice attaches the output sink the streaming worker renders mixed PCM
// into. Passing nil reverts to NullDevice.
func (m *SoundMixer) SetDevice(d Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d == nil {
		d = NullDevice{}
	}
	m.device = d
}

// SetOutputFormat sets the channel count and sample rate the streaming
// worker renders its mixed frames at. Every playing handle is expected to
// already be decoded at this format; Render does not resample.
func (m *SoundMixer) SetOutputFormat(f SampleFormat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputFormat = f
}

// AddGroup creates a new mixer group and returns its id.
func (m *SoundMixer) AddGroup(name string) GroupID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextGroup
	m.nextGroup++
	m.groups[id] = &Group{Name: name, MasterVolume: 1, Volume: 1}
	return id
}

func (m *SoundMixer) group(id GroupID) *Group {
	if g, ok := m.groups[id]; ok {
		return g
	}
	return m.groups[DefaultGroup]
}

// SetGroupVolume sets a group's own volume (distinct from its master volume
// slider).
func (m *SoundMixer) SetGroupVolume(id GroupID, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(id).Volume = v
}

// SetGroupMasterVolume sets a group's master volume slider.
func (m *SoundMixer) SetGroupMasterVolume(id GroupID, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(id).MasterVolume = v
}

// SetGroupMute mutes or unmutes a single group.
func (m *SoundMixer) SetGroupMute(id GroupID, mute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.group(id).Mute = mute
}

// SetGroupSolo solos id, silencing every other group, or clears solo
// entirely when solo is false. At most one group can be soloed at a time.
func (m *SoundMixer) SetGroupSolo(id GroupID, solo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for gid, g := range m.groups {
		g.Solo = solo && gid == id
	}
	m.soloActive = solo
	m.soloGroup = id
}

// SetMasterMute mutes or unmutes the entire mixer.
func (m *SoundMixer) SetMasterMute(mute bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterMute = mute
}

// SetMasterVolume sets the mixer-wide volume multiplier.
func (m *SoundMixer) SetMasterVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVol = v
}

// effectiveVolume implements the gain law: silence wins over every
// multiplier whenever master mute, solo-exclusion, or group mute applies;
// otherwise every gain stage multiplies together.
func (m *SoundMixer) effectiveVolume(h *handle) float64 {
	g := m.group(h.group)
	if m.masterMute || g.Mute || (m.soloActive && h.group != m.soloGroup) {
		return 0
	}
	return m.masterVol * g.MasterVolume * g.Volume * h.perHandleVolume
}

func (m *SoundMixer) addHandle(backend Buffer, group GroupID, destroyOnStop bool) HandleID {
	m.nextHandle++
	id := m.nextHandle
	m.handles[id] = &handle{backend: backend, group: group, perHandleVolume: 1, destroyOnStop: destroyOnStop}
	return id
}

// PlayOneShot decodes and fully buffers dec, plays it immediately in group,
// and marks it for automatic cleanup once playback finishes.
func (m *SoundMixer) PlayOneShot(dec Decoder, group GroupID) (HandleID, error) {
	buf, err := NewStaticBuffer(dec)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.addHandle(buf, group, true)
	if err := buf.Play(); err != nil {
		delete(m.handles, id)
		return 0, err
	}
	if m.logger != nil {
		m.logger.LogAudiof(debug.LogLevelDebug, "play one-shot handle=%d group=%d", id, group)
	}
	return id, nil
}

// PlayStreaming starts dec streaming in group without blocking on a full
// decode; the caller retains ownership of dec's lifetime via Close/Stop.
func (m *SoundMixer) PlayStreaming(dec Decoder, group GroupID, loop bool) (HandleID, error) {
	buf := NewStreamingBuffer(dec)
	buf.SetLooping(loop)
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.addHandle(buf, group, false)
	if err := buf.Play(); err != nil {
		delete(m.handles, id)
		return 0, err
	}
	if m.logger != nil {
		m.logger.LogAudiof(debug.LogLevelDebug, "play streaming handle=%d group=%d loop=%v", id, group, loop)
	}
	return id, nil
}

func (m *SoundMixer) lookup(id HandleID) (*handle, error) {
	h, ok := m.handles[id]
	if !ok {
		return nil, errs.New(errs.KindNotFound, "audio.SoundMixer", nil)
	}
	return h, nil
}

// Stop halts playback; if fadeSeconds > 0 the handle fades to silence over
// that duration (at assumedFPS) before stopping instead of cutting off.
func (m *SoundMixer) Stop(id HandleID, fadeSeconds float64, assumedFPS int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	if fadeSeconds <= 0 {
		h.backend.Stop()
		return nil
	}
	h.fade = &fade{
		startVolume:      h.perHandleVolume,
		endVolume:        0,
		totalFrames:      maxInt(1, int(fadeSeconds*float64(assumedFPS))),
		autoStopOnFinish: true,
	}
	return nil
}

// FadeTo ramps a handle's volume to target over fadeSeconds without
// stopping it.
func (m *SoundMixer) FadeTo(id HandleID, target float64, fadeSeconds float64, assumedFPS int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	h.fade = &fade{
		startVolume: h.perHandleVolume,
		endVolume:   target,
		totalFrames: maxInt(1, int(fadeSeconds*float64(assumedFPS))),
	}
	return nil
}

func (m *SoundMixer) SetVolume(id HandleID, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	h.perHandleVolume = v
	return nil
}

func (m *SoundMixer) SetPitch(id HandleID, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	h.backend.SetPitch(v)
	return nil
}

func (m *SoundMixer) SetPan(id HandleID, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	h.backend.SetPan(v)
	return nil
}

func (m *SoundMixer) SetLooping(id HandleID, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	h.backend.SetLooping(loop)
	return nil
}

func (m *SoundMixer) Seek(id HandleID, seconds float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return err
	}
	return h.backend.SetPosition(seconds)
}

func (m *SoundMixer) Tell(id HandleID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return h.backend.Position(), nil
}

func (m *SoundMixer) Length(id HandleID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, err := m.lookup(id)
	if err != nil {
		return 0, err
	}
	return h.backend.Length(), nil
}

func (m *SoundMixer) IsPlaying(id HandleID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[id]
	return ok && h.backend.IsPlaying()
}

// Update advances every live handle by dt seconds, steps active fades, and
// reaps handles that finished or were scheduled for deferred deletion. Call
// it once per frame from the game loop when no streaming worker is running;
// once StartStreamingWorker owns playback advancement, dt should be 0 here
// so only fades and gain are stepped (see the worker's tick for why calling
// both as the sole Advance source would double-advance every handle).
func (m *SoundMixer) Update(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.handles {
		if h.fade != nil {
			h.fade.elapsedFrames++
			h.perHandleVolume = h.fade.value()
			if h.fade.finished() {
				if h.fade.autoStopOnFinish {
					h.backend.Stop()
				}
				h.fade = nil
			}
		}
		h.backend.Advance(dt)
		h.backend.SetVolume(m.effectiveVolume(h))
	}
	m.reapLocked()
}

// StartStreamingWorker launches the audio streaming worker: the engine's one
// auxiliary thread per spec.md's concurrency model. It wakes every quarter
// of streamingBlockSeconds, refills any streaming handle's ring buffer that
// has crossed a block boundary, and queues freshly mixed PCM to the
// attached Device. A caller that starts this worker should stop driving
// playback position through Update itself; Update remains safe to call
// alongside it for fade/gain bookkeeping, since both hold m.mu, but calling
// both as the sole source of Advance would double-advance every handle.
// Calling StartStreamingWorker while already running is a no-op.
func (m *SoundMixer) StartStreamingWorker() {
	m.mu.Lock()
	if m.workerStop != nil {
		m.mu.Unlock()
		return
	}
	m.workerStop = make(chan struct{})
	m.workerDone = make(chan struct{})
	stop := m.workerStop
	done := m.workerDone
	m.mu.Unlock()

	interval := time.Duration(streamingBlockSeconds / 4 * float64(time.Second))
	go m.runStreamingWorker(interval, stop, done)
}

// runStreamingWorker is the worker's body: one ticker, one select loop,
// everything else behind m.mu so it can't race Update or the Play*/Stop
// family called from the main thread.
func (m *SoundMixer) runStreamingWorker(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick(interval.Seconds())
		}
	}
}

// tick advances playback by elapsed seconds, reaps anything that finished,
// and hands the attached Device one interval's worth of freshly mixed
// frames. Pulled out of the worker loop so a test can call it directly
// without waiting on a real ticker.
func (m *SoundMixer) tick(elapsedSeconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.handles {
		h.backend.Advance(elapsedSeconds)
	}
	m.reapLocked()

	frameCount := int(elapsedSeconds * float64(m.outputFormat.SampleRate))
	if frameCount <= 0 {
		return
	}
	mixed := make([]int16, frameCount*maxInt(m.outputFormat.Channels, 1))
	for _, h := range m.handles {
		h.backend.Render(mixed)
	}
	if err := m.device.QueueFrames(mixed); err != nil && m.logger != nil {
		m.logger.LogAudiof(debug.LogLevelWarning, "device queue failed: %v", err)
	}
}

// reapLocked drops every handle marked destroyOnStop that has stopped
// playing. Callers must hold m.mu.
func (m *SoundMixer) reapLocked() {
	for id, h := range m.handles {
		if h.destroyOnStop && !h.backend.IsPlaying() {
			m.pending = append(m.pending, id)
		}
	}
	for _, id := range m.pending {
		if h, ok := m.handles[id]; ok {
			h.backend.Close()
			delete(m.handles, id)
		}
	}
	m.pending = m.pending[:0]
}

// StopStreamingWorker stops the worker goroutine, if one is running, and
// blocks until it has exited.
func (m *SoundMixer) StopStreamingWorker() {
	m.mu.Lock()
	stop := m.workerStop
	done := m.workerDone
	m.workerStop = nil
	m.workerDone = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Shutdown stops the streaming worker if running, then stops and closes
// every handle.
func (m *SoundMixer) Shutdown() {
	m.StopStreamingWorker()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, h := range m.handles {
		h.backend.Stop()
		h.backend.Close()
		delete(m.handles, id)
	}
	m.device.Close()
}
