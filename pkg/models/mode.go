package models

// Mode identifies a study mode. Progress is tracked per (item, mode), so the
// same item can sit at different mastery levels in different modes.
type Mode string

const (
	ModeMeaning     Mode = "MEANING"
	ModeListening   Mode = "LISTENING"
	ModeListeningJP Mode = "LISTENING_JP"
	ModeJaToEn      Mode = "JA_TO_EN"
	ModeEnEn1       Mode = "EN_EN_1"
	ModeEnEn2       Mode = "EN_EN_2"
	ModeFillBlank   Mode = "FILL_BLANK"
	ModeSort        Mode = "SORT"
	ModeListenQ1    Mode = "LISTEN_Q1"
	ModeListenQ2    Mode = "LISTEN_Q2"
)

// AllModes lists every study mode in presentation order.
var AllModes = []Mode{
	ModeMeaning,
	ModeListening,
	ModeListeningJP,
	ModeJaToEn,
	ModeEnEn1,
	ModeEnEn2,
	ModeFillBlank,
	ModeSort,
	ModeListenQ1,
	ModeListenQ2,
}

// IsConversationListening reports whether the mode is one of the scripted
// conversation-listening modes. These modes keep their own reward policy
// (see scheduling.RewardFor).
func (m Mode) IsConversationListening() bool {
	return m == ModeListenQ1 || m == ModeListenQ2
}

// Valid reports whether m is a known study mode.
func (m Mode) Valid() bool {
	for _, known := range AllModes {
		if m == known {
			return true
		}
	}
	return false
}
