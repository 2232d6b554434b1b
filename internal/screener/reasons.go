package screener

// RejectReason identifica el criterio que descartó un candidato.
type RejectReason int

const (
	RejectAgeOutOfWindow RejectReason = iota
	RejectMarketCapOutOfWindow
	RejectLiveStream
	RejectRiskUnsafe
	RejectNoSocialPresence
	RejectAlreadyHeld
)

// String devuelve el nombre estable del motivo, usado en logs y métricas.
func (r RejectReason) String() string {
	switch r {
	case RejectAgeOutOfWindow:
		return "age out of window"
	case RejectMarketCapOutOfWindow:
		return "market cap out of window"
	case RejectLiveStream:
		return "has live stream"
	case RejectRiskUnsafe:
		return "risk unsafe"
	case RejectNoSocialPresence:
		return "no social presence"
	case RejectAlreadyHeld:
		return "already holding position"
	default:
		return "unknown"
	}
}

// Stats acumula los motivos de rechazo de un ciclo.
type Stats struct {
	age, mcap, stream, risk, social, held int
}

// Record cuenta un rechazo.
func (s *Stats) Record(r RejectReason) {
	switch r {
	case RejectAgeOutOfWindow:
		s.age++
	case RejectMarketCapOutOfWindow:
		s.mcap++
	case RejectLiveStream:
		s.stream++
	case RejectRiskUnsafe:
		s.risk++
	case RejectNoSocialPresence:
		s.social++
	case RejectAlreadyHeld:
		s.held++
	}
}

// Total devuelve el número total de rechazos del ciclo.
func (s *Stats) Total() int {
	return s.age + s.mcap + s.stream + s.risk + s.social + s.held
}

// Attrs devuelve los contadores como pares clave/valor para slog.
func (s *Stats) Attrs() []any {
	return []any{
		"skip_age", s.age,
		"skip_mcap", s.mcap,
		"skip_stream", s.stream,
		"skip_risk", s.risk,
		"skip_social", s.social,
		"skip_held", s.held,
	}
}
