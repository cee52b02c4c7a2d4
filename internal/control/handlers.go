package control

import (
	"context"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/power"
)

const (
	ActionSetInteractive = "set_interactive"
	ActionPowerHint      = "power_hint"
	ActionGetFeature     = "get_feature"
	ActionSetFeature     = "set_feature"
	ActionStatus         = "status"
)

type setInteractiveRequest struct {
	On *bool `cbor:"on"`
}

type powerHintRequest struct {
	Hint *uint32 `cbor:"hint"`
	Data *int32  `cbor:"data"`
}

type featureRequest struct {
	Feature *uint32 `cbor:"feature"`
	State   *int32  `cbor:"state"`
}

// FeatureReply carries a get_feature result.
type FeatureReply struct {
	Value int32 `cbor:"value"`
}

// StatusReply is the wire form of power.Status. Frequencies are the
// raw strings the kernel reported.
type StatusReply struct {
	Profile         string `cbor:"profile"`
	Interactive     bool   `cbor:"interactive"`
	TouchKeyBlocked bool   `cbor:"touchkey_blocked"`
	BoostPulseOpen  bool   `cbor:"boostpulse_open"`
	Governor        string `cbor:"governor"`
	GovernorFamily  string `cbor:"governor_family,omitempty"`
	HispeedFreqPath string `cbor:"hispeed_freq_path,omitempty"`
	IOIsBusyPath    string `cbor:"io_is_busy_path,omitempty"`
	BoostPulsePath  string `cbor:"boostpulse_path,omitempty"`
	MinFreq         string `cbor:"min_freq"`
	HispeedFreq     string `cbor:"hispeed_freq"`
	MaxFreq         string `cbor:"max_freq"`
	Touchscreen     string `cbor:"touchscreen,omitempty"`
	TouchKey        string `cbor:"touchkey,omitempty"`
	TapToWakeNode   string `cbor:"tap_to_wake_node,omitempty"`
}

// NewStatusReply flattens st for the wire.
func NewStatusReply(st power.Status) StatusReply {
	return StatusReply{
		Profile:         st.Profile.String(),
		Interactive:     st.Interactive,
		TouchKeyBlocked: st.TouchKeyBlocked,
		BoostPulseOpen:  st.BoostPulseOpen,
		Governor:        st.Governor.Governor,
		GovernorFamily:  st.Governor.Family,
		HispeedFreqPath: st.Governor.HispeedFreq,
		IOIsBusyPath:    st.Governor.IOIsBusy,
		BoostPulsePath:  st.Governor.BoostPulse,
		MinFreq:         st.Limits.Min,
		HispeedFreq:     st.Limits.Hispeed,
		MaxFreq:         st.Limits.Max,
		Touchscreen:     st.Touch.Touchscreen,
		TouchKey:        st.Touch.TouchKey,
		TapToWakeNode:   st.TapToWakeNode,
	}
}

// Register wires every power operation onto s.
func Register(s *Server, c power.Controller) {
	s.Handle(ActionSetInteractive, func(_ context.Context, raw []byte) (any, error) {
		var req setInteractiveRequest
		if err := decodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if req.On == nil {
			return nil, missing("on")
		}

		c.SetInteractive(*req.On)

		return nil, nil
	})

	s.Handle(ActionPowerHint, func(_ context.Context, raw []byte) (any, error) {
		var req powerHintRequest
		if err := decodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if req.Hint == nil {
			return nil, missing("hint")
		}

		c.PowerHint(power.Hint(*req.Hint), req.Data)

		return nil, nil
	})

	s.Handle(ActionGetFeature, func(_ context.Context, raw []byte) (any, error) {
		var req featureRequest
		if err := decodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if req.Feature == nil {
			return nil, missing("feature")
		}

		return FeatureReply{Value: c.GetFeature(power.Feature(*req.Feature))}, nil
	})

	s.Handle(ActionSetFeature, func(_ context.Context, raw []byte) (any, error) {
		var req featureRequest
		if err := decodeRequest(raw, &req); err != nil {
			return nil, err
		}
		if req.Feature == nil {
			return nil, missing("feature")
		}
		if req.State == nil {
			return nil, missing("state")
		}

		c.SetFeature(power.Feature(*req.Feature), *req.State)

		return nil, nil
	})

	s.Handle(ActionStatus, func(context.Context, []byte) (any, error) {
		return NewStatusReply(c.Status()), nil
	})
}

func decodeRequest(raw []byte, v any) error {
	if err := unmarshal(raw, v); err != nil {
		return errors.New().Wrap(ErrInvalidRequest, err)
	}
	return nil
}

func missing(field string) error {
	return errors.New().WithData(ErrMissingField, field)
}
