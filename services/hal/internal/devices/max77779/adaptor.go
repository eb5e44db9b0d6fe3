// services/hal/internal/devices/max77779/adaptor.go
package max77779adpt

import (
	"context"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"chargepath-go/drivers/max77779"
	"chargepath-go/services/hal/internal/halcore"
	"chargepath-go/services/hal/internal/halerr"
	"chargepath-go/services/hal/internal/util"
	"chargepath-go/types"
)

type adaptor struct {
	id  string
	bus string

	// mu is the charger-wide lock. Every machine call and every register
	// read made on behalf of the bus goes through it.
	mu  sync.Mutex
	dev *max77779.Device
	m   *max77779.Machine
	cfg max77779.Config

	now    func() time.Time
	logf   func(string)
	hasPin bool
}

func (a *adaptor) ID() string { return a.id }

func (a *adaptor) Capabilities() []halcore.CapInfo {
	names := make([]string, 0, len(max77779.UseCases()))
	for _, u := range max77779.UseCases() {
		names = append(names, u.String())
	}
	wlc, rtx := a.cfg.WlcEnGPIO, a.cfg.RtxEnGPIO
	if !a.hasPin {
		wlc, rtx = max77779.NoGPIO, max77779.NoGPIO
	}
	info := types.ChargerInfo{
		Model:     "max77779",
		Bus:       a.bus,
		Addr:      a.dev.Address(),
		UseCases:  names,
		WlcEnPin:  wlc,
		RtxEnPin:  rtx,
		RxToRxOTG: a.cfg.RxToRxOTG,
	}
	return []halcore.CapInfo{{
		Kind: string(types.KindCharger),
		Info: map[string]any{"schema_version": 1, "driver": "max77779", "detail": info},
	}}
}

// Trigger: registers are live; nothing to start.
func (a *adaptor) Trigger(ctx context.Context) (time.Duration, error) { return 0, nil }

func (a *adaptor) Collect(ctx context.Context) (halcore.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := a.status()
	return halcore.Sample{{Kind: string(types.KindCharger), Payload: v, TsMs: v.TS}}, nil
}

func (a *adaptor) status() types.ChargerValue {
	a.mu.Lock()
	s := a.dev.Snapshot()
	uc := a.m.Current()
	a.mu.Unlock()

	it := types.NewBitIter(types.ChargerIntOK(s.IntOK), types.ChargerIntOKTable[:])
	flags := it.Names()
	if s.ChgInSelected() {
		flags = append(flags, "chgin_sel")
	}
	if s.WcInSelected() {
		flags = append(flags, "wcin_sel")
	}
	return types.ChargerValue{
		UseCase:   uc.String(),
		Mode:      s.Mode.String(),
		ModeRaw:   uint8(s.Mode),
		OTGIlimMA: int32(max77779.IlimCurrent(s.OTGIlim) / physic.MilliAmpere),
		Vbyp:      s.VbypCode,
		InputSel:  s.InputSelect,
		IntOK:     uint8(s.IntOK),
		Details00: s.Details00,
		Details01: s.Details01,
		Flags:     flags,
		TS:        a.now().UnixMilli(),
	}
}

// Control verbs for kind "charger".
func (a *adaptor) Control(kind, method string, payload any) (any, error) {
	if kind != string(types.KindCharger) {
		return nil, halcore.ErrUnsupported
	}
	switch method {
	case "set_use_case":
		var p types.SetUseCase
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		u, ok := max77779.ParseUseCase(p.UseCase)
		if !ok {
			return nil, halerr.ErrUnknownMode
		}
		plan, err := a.transition(u)
		if err != nil {
			return nil, err
		}
		return types.SetUseCaseReply{OK: true, UseCase: a.current().String(), Plan: plan.String()}, nil
	case "get_use_case":
		return types.SetUseCaseReply{OK: true, UseCase: a.current().String()}, nil
	case "write_raw_mode":
		var p types.WriteRawMode
		if err := decode(payload, &p); err != nil {
			return nil, err
		}
		if p.Mode > 0x0F {
			return nil, halerr.ErrInvalidParams
		}
		a.mu.Lock()
		err := a.m.WriteRawMode(max77779.Mode(p.Mode))
		a.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return types.OKReply{OK: true}, nil
	case "read_status":
		return a.status(), nil
	default:
		return nil, halcore.ErrUnsupported
	}
}

func (a *adaptor) current() max77779.UseCase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.m.Current()
}

func (a *adaptor) setUseCase(u max77779.UseCase) error {
	_, err := a.transition(u)
	return err
}

// transition plans and runs one use-case change under the charger lock.
func (a *adaptor) transition(u max77779.UseCase) (max77779.EdgeKind, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.m.Data().InitDone() {
		if err := a.m.Init(); err != nil {
			return max77779.Unsupported, err
		}
	}
	from := a.m.Current()
	plan := a.m.Plan(u)
	if err := a.m.TransitionTo(u); err != nil {
		a.logf("max77779 " + a.id + ": " + from.String() + " -> " + u.String() + " failed: " + err.Error())
		return plan, err
	}
	return plan, nil
}

// machineLog forwards driver diagnostics (unsupported edges, best-effort
// failures) to the HAL log.
func (a *adaptor) machineLog(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	a.logf("max77779 " + a.id + ": " + msg)
}

// decode accepts a typed payload or any JSON-shaped value.
func decode[T any](payload any, dst *T) error {
	if v, ok := payload.(T); ok {
		*dst = v
		return nil
	}
	if v, ok := payload.(*T); ok && v != nil {
		*dst = *v
		return nil
	}
	if err := util.DecodeJSON(payload, dst); err != nil {
		return halerr.ErrBadPayload
	}
	return nil
}
