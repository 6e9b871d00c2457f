package claudeusage

import "fmt"

// Absent is the utilization sentinel for a window the server did not report.
// It is distinct from a genuine 0% reading.
const Absent = -1.0

// Window is one usage bucket. Utilization is passed through exactly as the
// server sent it, including values above 100 or below 0.
type Window struct {
	Utilization float64
	ResetsAt    string // ISO-8601; empty means not applicable
}

func absentWindow() Window { return Window{Utilization: Absent} }

// Present reports whether the server sent a utilization for this window.
// A negative value other than the sentinel still counts as present.
func (w Window) Present() bool { return w.Utilization != Absent }

// Cents is a monetary amount in the server's unit. Conversion happens only
// at display time.
type Cents float64

func (c Cents) Dollars() float64 { return float64(c) / 100 }

func (c Cents) String() string { return fmt.Sprintf("$%.2f", c.Dollars()) }

type ExtraUsage struct {
	Enabled      bool
	MonthlyLimit Cents
	UsedCredits  Cents
	Utilization  *float64
}

// Usage is the payload of a successful fetch.
type Usage struct {
	FiveHour       Window
	SevenDay       Window
	SevenDayOpus   Window
	SevenDaySonnet Window
	Extra          *ExtraUsage
	Tier           string
}

// NewUsage returns a Usage with every window absent. The zero Usage reads as
// four 0% windows, so build from this instead.
func NewUsage() Usage {
	return Usage{
		FiveHour:       absentWindow(),
		SevenDay:       absentWindow(),
		SevenDayOpus:   absentWindow(),
		SevenDaySonnet: absentWindow(),
	}
}

// ErrorKind groups failures for logging and alert decisions.
type ErrorKind int

const (
	KindNoToken ErrorKind = iota + 1
	KindNetwork
	KindAuth
	KindServer
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoToken:
		return "no_token"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch cycle: either Valid or Failed. Usage
// data is only reachable through Valid, so an error can never be read
// alongside stale numbers.
type Result interface {
	isResult()
}

type Valid struct {
	Usage Usage
}

type Failed struct {
	Kind    ErrorKind
	Message string
}

func (Valid) isResult()  {}
func (Failed) isResult() {}

func (f Failed) Error() string { return f.Message }

// WithTier returns r with the subscription tier attached when r is Valid.
func WithTier(r Result, tier string) Result {
	if v, ok := r.(Valid); ok {
		v.Usage.Tier = tier
		return v
	}
	return r
}
