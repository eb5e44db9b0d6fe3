// services/hal/internal/service/service.go
package service

import (
	"context"
	"errors"
	"time"

	"chargepath-go/bus"
	"chargepath-go/services/hal/internal/consts"
	"chargepath-go/services/hal/internal/halcore"
	"chargepath-go/services/hal/internal/halerr"
	"chargepath-go/services/hal/internal/registry"
	"chargepath-go/services/hal/internal/util"
	"chargepath-go/services/hal/internal/worker"
	"chargepath-go/types"
)

type devEntry struct {
	adaptor halcore.Adaptor
	caps    map[string]int // kind -> numeric capability id
	busID   string
}

type capKey struct {
	kind string
	id   int
}

// Service builds devices from "config/hal", samples them through one worker
// per bus and routes "hal/cap/<kind>/<id>/control/<verb>" requests to them.
type Service struct {
	conn  *bus.Connection
	buses halcore.I2CBusFactory
	pins  halcore.PinFactory

	workers map[string]*worker.MeasureWorker // busID -> worker
	results chan halcore.Result

	devices   map[string]devEntry
	capToDev  map[capKey]string
	nextCapID map[string]int

	devPeriod  map[string]time.Duration
	devNextDue map[string]time.Time

	timer *time.Timer
	now   func() time.Time
}

var (
	topicConfigHAL = bus.T(consts.TokConfig, consts.TokHAL)
	topicCtrl      = bus.T(consts.TokHAL, consts.TokCapability, bus.Any, bus.Any, consts.TokControl, bus.Any)
)

func New(conn *bus.Connection, buses halcore.I2CBusFactory, pins halcore.PinFactory) *Service {
	return &Service{
		conn:       conn,
		buses:      buses,
		pins:       pins,
		workers:    map[string]*worker.MeasureWorker{},
		results:    make(chan halcore.Result, 16),
		devices:    map[string]devEntry{},
		capToDev:   map[capKey]string{},
		nextCapID:  map[string]int{},
		devPeriod:  map[string]time.Duration{},
		devNextDue: map[string]time.Time{},
		now:        time.Now,
	}
}

func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigHAL)
	ctrlSub := s.conn.Subscribe(topicCtrl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config", nil)

	s.timer = time.NewTimer(time.Hour)
	if !s.timer.Stop() {
		util.DrainTimer(s.timer)
	}

	for {
		if next := s.earliestDevDue(); next.IsZero() {
			util.ResetTimer(s.timer, time.Hour)
		} else {
			util.ResetTimer(s.timer, next.Sub(s.now()))
		}

		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg := <-cfgSub.Channel():
			cfg, ok := decodeConfig(msg.Payload)
			if !ok {
				s.publishState("error", "config_wrong_type", nil)
				continue
			}
			if err := s.applyConfig(ctx, cfg); err != nil {
				s.publishState("error", "apply_config_failed", err)
				continue
			}
			s.publishState("ready", "configured", nil)

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)

		case <-s.timer.C:
			now := s.now()
			for devID, due := range s.devNextDue {
				if !now.Before(due) {
					s.submitMeasure(devID, false)
					s.bumpDevNext(devID, now)
				}
			}

		case r := <-s.results:
			s.handleResult(r)
		}
	}
}

// applyConfig builds devices not yet known and retires those no longer
// listed. A device that fails to build is skipped; the first failure is
// returned once the rest of the config has been applied.
func (s *Service) applyConfig(ctx context.Context, cfg types.HALConfig) error {
	var firstErr error
	seen := map[string]struct{}{}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		seen[d.ID] = struct{}{}
		if _, exists := s.devices[d.ID]; exists {
			continue
		}

		b, ok := registry.Lookup(d.Type)
		if !ok {
			println("[hal] unknown device type", d.Type, "for", d.ID)
			if firstErr == nil {
				firstErr = halerr.ErrUnknownType
			}
			continue
		}
		out, err := b.Build(registry.BuildInput{
			Ctx:        ctx,
			Buses:      s.buses,
			Pins:       s.pins,
			DeviceID:   d.ID,
			Type:       d.Type,
			ParamsJSON: d.Params,
			BusRefType: d.BusRef.Type,
			BusRefID:   d.BusRef.ID,
		})
		if err != nil {
			println("[hal] build", d.ID, "failed:", err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if out.BusID != "" {
			if _, ok := s.workers[out.BusID]; !ok {
				w := worker.New(halcore.WorkerConfig{}, s.results)
				w.Start(ctx)
				s.workers[out.BusID] = w
			}
		}

		entry := devEntry{adaptor: out.Adaptor, busID: out.BusID, caps: map[string]int{}}
		for _, ci := range out.Adaptor.Capabilities() {
			id := s.nextCapID[ci.Kind]
			s.nextCapID[ci.Kind]++
			entry.caps[ci.Kind] = id
			s.capToDev[capKey{kind: ci.Kind, id: id}] = d.ID

			s.pubRet(ci.Kind, id, consts.TokInfo, ci.Info)
			s.pubRet(ci.Kind, id, consts.TokState, types.CapabilityState{Link: types.LinkUp, TS: s.now().UnixMilli()})
		}
		s.devices[d.ID] = entry

		if out.SampleEvery > 0 {
			s.devPeriod[d.ID] = clampPeriod(out.SampleEvery)
			// First reading shortly after configuration.
			s.devNextDue[d.ID] = s.now().Add(consts.MinPeriodMS * time.Millisecond)
		}
	}

	for devID, ent := range s.devices {
		if _, ok := seen[devID]; ok {
			continue
		}
		for kind, id := range ent.caps {
			s.pubRet(kind, id, consts.TokInfo, nil)
			s.pubRet(kind, id, consts.TokState, types.CapabilityState{Link: types.LinkDown, TS: s.now().UnixMilli()})
			delete(s.capToDev, capKey{kind: kind, id: id})
		}
		delete(s.devices, devID)
		delete(s.devPeriod, devID)
		delete(s.devNextDue, devID)
	}
	return firstErr
}

// decodeConfig accepts a typed HALConfig or the JSON-shaped object the
// config service publishes.
func decodeConfig(p any) (types.HALConfig, bool) {
	switch v := p.(type) {
	case types.HALConfig:
		return v, true
	case *types.HALConfig:
		return *v, v != nil
	case map[string]any:
		var cfg types.HALConfig
		if err := util.DecodeJSON(v, &cfg); err != nil {
			return types.HALConfig{}, false
		}
		return cfg, true
	default:
		return types.HALConfig{}, false
	}
}

// ---- control ----

func (s *Service) handleControl(msg *bus.Message) {
	if len(msg.Topic) != 6 {
		return
	}
	kind, _ := msg.Topic[2].(string)
	idNum, ok := asInt(msg.Topic[3])
	if !ok || kind == "" {
		s.replyErr(msg, halerr.ErrInvalidCap)
		return
	}
	devID, ok := s.capToDev[capKey{kind: kind, id: idNum}]
	if !ok {
		s.replyErr(msg, halerr.ErrUnknownCap)
		return
	}
	method, _ := msg.Topic[5].(string)

	switch method {
	case consts.CtrlReadNow:
		if s.submitMeasure(devID, true) {
			s.bumpDevNext(devID, s.now())
			s.conn.Reply(msg, types.ReadNowAck{OK: true}, false)
		} else {
			s.replyErr(msg, halerr.ErrBusy)
		}
	case consts.CtrlSetRate:
		var p types.SetRate
		if err := util.DecodeJSON(msg.Payload, &p); err != nil || p.PeriodMS <= 0 {
			s.replyErr(msg, halerr.ErrInvalidRate)
			return
		}
		s.devPeriod[devID] = clampPeriod(time.Duration(p.PeriodMS) * time.Millisecond)
		s.bumpDevNext(devID, s.now())
		s.conn.Reply(msg, types.SetRateAck{OK: true, PeriodMS: int(s.devPeriod[devID] / time.Millisecond)}, false)
	default:
		ent := s.devices[devID]
		if ent.adaptor == nil {
			s.replyErr(msg, halerr.ErrNoAdaptor)
			return
		}
		res, err := ent.adaptor.Control(kind, method, msg.Payload)
		if err != nil {
			if errors.Is(err, halcore.ErrUnsupported) {
				err = halerr.ErrUnsupported
			}
			s.replyErr(msg, err)
			return
		}
		s.conn.Reply(msg, res, false)
		if method == consts.CtrlSetUseCase || method == consts.CtrlWriteRawMode {
			_ = s.submitMeasure(devID, true)
		}
	}
}

// ---- measurement helpers ----

func (s *Service) submitMeasure(devID string, prio bool) bool {
	ent, ok := s.devices[devID]
	if !ok {
		return false
	}
	w := s.workers[ent.busID]
	if w == nil {
		return false
	}
	return w.Submit(halcore.MeasureReq{ID: devID, Adaptor: ent.adaptor, Prio: prio})
}

func (s *Service) bumpDevNext(devID string, from time.Time) {
	period, ok := s.devPeriod[devID]
	if !ok {
		return
	}
	s.devNextDue[devID] = from.Add(period)
}

func (s *Service) earliestDevDue() time.Time {
	var min time.Time
	for _, t := range s.devNextDue {
		if !t.IsZero() && (min.IsZero() || t.Before(min)) {
			min = t
		}
	}
	return min
}

func clampPeriod(d time.Duration) time.Duration {
	ms := util.ClampInt(int(d/time.Millisecond), consts.MinPeriodMS, consts.MaxPeriodMS)
	return time.Duration(ms) * time.Millisecond
}

// ---- results ----

func (s *Service) handleResult(r halcore.Result) {
	ent, ok := s.devices[r.ID]
	if !ok {
		return
	}
	ts := s.now().UnixMilli()

	if r.Err != nil {
		for kind, id := range ent.caps {
			s.pubRet(kind, id, consts.TokState, types.CapabilityState{Link: types.LinkDegraded, TS: ts, Error: r.Err.Error()})
		}
		return
	}
	for _, rd := range r.Sample {
		id, ok := ent.caps[rd.Kind]
		if !ok {
			continue
		}
		s.pubRet(rd.Kind, id, consts.TokValue, rd.Payload)
		s.pubRet(rd.Kind, id, consts.TokState, types.CapabilityState{Link: types.LinkUp, TS: ts})
	}
}

// ---- bus helpers ----

func (s *Service) publishState(level, status string, err error) {
	pl := types.HALState{Level: level, Status: status, TS: s.now().UnixMilli()}
	if err != nil {
		pl.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(bus.T(consts.TokHAL, consts.TokState), pl, true))
}

func (s *Service) replyErr(req *bus.Message, err error) {
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: err.Error()}, false)
}

// CapTopic is hal/cap/<kind>/<id>/<suffix...>.
func CapTopic(kind string, id int, suffix ...any) bus.Topic {
	return bus.T(consts.TokHAL, consts.TokCapability, kind, id).Append(suffix...)
}

func (s *Service) pubRet(kind string, id int, suffix string, p any) {
	s.conn.Publish(s.conn.NewMessage(CapTopic(kind, id, suffix), p, true))
}

func asInt(t any) (int, bool) {
	switch v := t.(type) {
	case int:
		return v, true
	case string:
		n := 0
		if v == "" {
			return 0, false
		}
		for _, c := range v {
			if c < '0' || c > '9' {
				return 0, false
			}
			n = n*10 + int(c-'0')
		}
		return n, true
	default:
		return 0, false
	}
}
