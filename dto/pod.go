package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text is a string that also accepts JSON numbers and booleans, kept as their
// literal text. null decodes to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		// objects and arrays are not representable as a cell
		*t = ""
		return nil
	}
	*t = Text(strconv.FormatBool(b))

	return nil
}

func (t Text) String() string {
	return string(t)
}

type Pod struct {
	Name      Text `json:"NAME"`
	Namespace Text `json:"NAMESPACE"`
	Status    Text `json:"STATUS"`
	Restarts  Text `json:"RESTARTS"`
	Node      Text `json:"NODE"`
	IP        Text `json:"IP"`
	Age       Text `json:"AGE"`
	Ready     Text `json:"READY"`
	CPU       Text `json:"CPU"`
	Memory    Text `json:"MEMORY"`
}
