package enums

// ScanResultType tells the scanner client what a code resolved to.
type ScanResultType string

const (
	ScanResultTypeProduct ScanResultType = "product"
	ScanResultTypeOrder   ScanResultType = "order"
)

// String implements fmt.Stringer.
func (s ScanResultType) String() string {
	return string(s)
}
