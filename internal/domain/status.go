package domain

// StatusColor is the display color tag for an ANS charge status.
type StatusColor string

const (
	ColorRed    StatusColor = "red"
	ColorOrange StatusColor = "orange"
	ColorYellow StatusColor = "yellow"
	ColorGreen  StatusColor = "green"
	ColorBlue   StatusColor = "blue"
	ColorGray   StatusColor = "gray"
)

// StatusDescriptor is the label and color shown for an ans_charge_status code.
type StatusDescriptor struct {
	Label string      `json:"label"`
	Color StatusColor `json:"color"`
}

// statusTable is indexed by status code; index 0 is never read.
var statusTable = [...]StatusDescriptor{
	1: {Label: "much below usual", Color: ColorRed},
	2: {Label: "below usual", Color: ColorOrange},
	3: {Label: "usual", Color: ColorYellow},
	4: {Label: "above usual", Color: ColorGreen},
	5: {Label: "much above usual", Color: ColorBlue},
}

// unknownStatus describes any code outside 1–5.
var unknownStatus = StatusDescriptor{Label: "unknown", Color: ColorGray}

// DescribeStatus returns the descriptor for code. It is total: codes outside
// 1–5 return unknownStatus.
func DescribeStatus(code int) StatusDescriptor {
	if code < 1 || code >= len(statusTable) {
		return unknownStatus
	}
	return statusTable[code]
}

// KnownStatus reports whether code has its own descriptor.
func KnownStatus(code int) bool {
	return code >= 1 && code < len(statusTable)
}
