package dispatch

// Field is one name/value pair rendered into the destination embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is a channel-ready structured message, independent of the chat
// platform's own embed type.
type Message struct {
	Title     string
	URL       string
	Color     int
	Fields    []Field
	Footer    string
	Thumbnail string
}

// AddField appends a field and returns the message for chaining.
func (m *Message) AddField(name, value string, inline bool) *Message {
	m.Fields = append(m.Fields, Field{Name: name, Value: value, Inline: inline})
	return m
}
