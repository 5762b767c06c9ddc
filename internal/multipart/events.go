package multipart

// EventKind identifies one of the typed parse events the decoder emits.
type EventKind uint8

const (
	// EventPartBegin marks the opening boundary of a new part.
	EventPartBegin EventKind = iota + 1
	// EventHeaderField carries bytes of a header name.
	EventHeaderField
	// EventHeaderValue carries bytes of a header value.
	EventHeaderValue
	// EventHeaderEnd terminates one header name/value pair.
	EventHeaderEnd
	// EventHeadersFinished marks the blank line ending a part's header block.
	EventHeadersFinished
	// EventPartData carries payload bytes of the current part.
	EventPartData
	// EventPartEnd marks the boundary closing the current part.
	EventPartEnd
	// EventEnd marks the final boundary terminating the whole stream.
	EventEnd
)

// String returns the event kind name for logs and test failures.
func (k EventKind) String() string {
	switch k {
	case EventPartBegin:
		return "part_begin"
	case EventHeaderField:
		return "header_field"
	case EventHeaderValue:
		return "header_value"
	case EventHeaderEnd:
		return "header_end"
	case EventHeadersFinished:
		return "headers_finished"
	case EventPartData:
		return "part_data"
	case EventPartEnd:
		return "part_end"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is one element of the decoder's output sequence. Data is set only
// for EventHeaderField, EventHeaderValue and EventPartData; it is an
// independent copy that remains valid after further decoder writes.
//
// Per part the legal order is:
//
//	PartBegin → (HeaderField HeaderValue HeaderEnd)* → HeadersFinished → PartData* → PartEnd
//
// and the full sequence terminates with End after the last part.
type Event struct {
	Kind EventKind
	Data []byte
}
