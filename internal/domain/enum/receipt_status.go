package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReceiptStatus represents the lifecycle state of a receipt
type ReceiptStatus int

const (
	ReceiptStatusIssued ReceiptStatus = 0
	ReceiptStatusVoid   ReceiptStatus = 1
)

var receiptStatusNames = [...]string{"issued", "void"}

func (s ReceiptStatus) String() string {
	if s < 0 || int(s) >= len(receiptStatusNames) {
		return fmt.Sprintf("ReceiptStatus(%d)", int(s))
	}
	return receiptStatusNames[s]
}

// ParseReceiptStatus maps "issued"/"void" to the status value
func ParseReceiptStatus(str string) (ReceiptStatus, bool) {
	for i, name := range receiptStatusNames {
		if name == str {
			return ReceiptStatus(i), true
		}
	}
	return 0, false
}

func (s ReceiptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
		return nil
	}
	parsed, ok := ParseReceiptStatus(str)
	if !ok {
		return fmt.Errorf("unknown receipt status %q", str)
	}
	*s = parsed
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusIssued
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceiptStatus(v)
	case int32:
		*s = ReceiptStatus(v)
	case int:
		*s = ReceiptStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into ReceiptStatus", value)
	}
	return nil
}
