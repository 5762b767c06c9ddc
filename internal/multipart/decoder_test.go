package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll writes the body in fixed-size chunks and returns the full event
// sequence.
func feedAll(t *testing.T, d *Decoder, body []byte, chunkSize int) []Event {
	t.Helper()
	var events []Event
	for off := 0; off < len(body); off += chunkSize {
		end := off + chunkSize
		if end > len(body) {
			end = len(body)
		}
		evs, err := d.Write(body[off:end])
		require.NoError(t, err)
		events = append(events, evs...)
	}
	return events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestDecoderSinglePart(t *testing.T) {
	body := []byte("--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"\r\n" +
		"\r\n" +
		"hello\r\n" +
		"--XYZ--")

	d := NewDecoder([]byte("XYZ"))
	events := feedAll(t, d, body, len(body))
	require.NoError(t, d.Close())

	assert.Equal(t, []EventKind{
		EventPartBegin,
		EventHeaderField, EventHeaderValue, EventHeaderEnd,
		EventHeadersFinished,
		EventPartData,
		EventPartEnd,
		EventEnd,
	}, kinds(events))

	assert.Equal(t, []byte("Content-Disposition"), events[1].Data)
	assert.Equal(t, []byte("form-data; name=\"file\""), events[2].Data)
	assert.Equal(t, []byte("hello"), events[5].Data)
}

func TestDecoderChunkingInvariance(t *testing.T) {
	body := []byte("--b1\r\n" +
		"Content-Disposition: form-data; name=\"a\"\r\n" +
		"X-Extra: one\r\n" +
		"\r\n" +
		"first part payload\r\n" +
		"--b1\r\n" +
		"Content-Disposition: form-data; name=\"b\"\r\n" +
		"\r\n" +
		"second\r\npayload with embedded CRLF\r\n" +
		"--b1--")

	decode := func(chunkSize int) []FormItem {
		d := NewDecoder([]byte("b1"))
		a := NewAssembler(DefaultCharset)
		events := feedAll(t, d, body, chunkSize)
		require.NoError(t, a.Feed(events))
		require.NoError(t, d.Close())
		return a.Items()
	}

	whole := decode(len(body))
	require.Len(t, whole, 2)
	assert.Equal(t, "a", whole[0].FieldName)
	assert.Equal(t, []byte("first part payload"), whole[0].Data)
	assert.Equal(t, "b", whole[1].FieldName)
	assert.Equal(t, []byte("second\r\npayload with embedded CRLF"), whole[1].Data)

	for _, chunkSize := range []int{1, 2, 3, 7, 64, 64 * 1024} {
		assert.Equal(t, whole, decode(chunkSize), "chunk size %d", chunkSize)
	}
}

func TestDecoderEventDataSurvivesLaterWrites(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))

	evs, err := d.Write([]byte("--XYZ\r\nX-A: 1\r\n"))
	require.NoError(t, err)
	require.Len(t, evs, 4) // part begin + field/value/end

	_, err = d.Write([]byte("\r\nbody\r\n--XYZ--"))
	require.NoError(t, err)

	assert.Equal(t, []byte("X-A"), evs[1].Data)
	assert.Equal(t, []byte("1"), evs[2].Data)
}

func TestDecoderNoEventForUnterminatedLookahead(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))

	// Partial boundary line: nothing may be emitted yet.
	evs, err := d.Write([]byte("--XY"))
	require.NoError(t, err)
	assert.Empty(t, evs)

	// Partial header line after the boundary completes.
	evs, err = d.Write([]byte("Z\r\nContent-Disposition: form-"))
	require.NoError(t, err)
	assert.Equal(t, []EventKind{EventPartBegin}, kinds(evs))
}

func TestDecoderDataSplitAcrossSeam(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))
	a := NewAssembler(DefaultCharset)

	// The closing seam "\r\n--XYZ" straddles the chunk boundary; the tail
	// of the first chunk must not be flushed as payload.
	chunks := [][]byte{
		[]byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nhel"),
		[]byte("lo\r\n--X"),
		[]byte("YZ--"),
	}
	for _, chunk := range chunks {
		evs, err := d.Write(chunk)
		require.NoError(t, err)
		require.NoError(t, a.Feed(evs))
	}
	require.NoError(t, d.Close())

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, []byte("hello"), items[0].Data)
}

func TestDecoderMalformedHeaderLine(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))

	_, err := d.Write([]byte("--XYZ\r\nnot a header line\r\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMultipart)

	// The error is sticky.
	_, err = d.Write([]byte("anything"))
	assert.ErrorIs(t, err, ErrMalformedMultipart)
}

func TestDecoderJunkAfterBoundary(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))

	_, err := d.Write([]byte("--XYZjunk"))
	assert.ErrorIs(t, err, ErrMalformedMultipart)
}

func TestDecoderCloseStates(t *testing.T) {
	t.Run("no boundary at all", func(t *testing.T) {
		d := NewDecoder([]byte("XYZ"))
		_, err := d.Write([]byte("plain text, nothing multipart about it"))
		require.NoError(t, err)
		assert.ErrorIs(t, d.Close(), ErrMalformedMultipart)
	})

	t.Run("truncated inside part", func(t *testing.T) {
		d := NewDecoder([]byte("XYZ"))
		_, err := d.Write([]byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nhel"))
		require.NoError(t, err)
		assert.ErrorIs(t, d.Close(), ErrIncompleteMultipart)
	})

	t.Run("truncated inside headers", func(t *testing.T) {
		d := NewDecoder([]byte("XYZ"))
		_, err := d.Write([]byte("--XYZ\r\nContent-Dis"))
		require.NoError(t, err)
		assert.ErrorIs(t, d.Close(), ErrIncompleteMultipart)
	})

	t.Run("complete stream", func(t *testing.T) {
		d := NewDecoder([]byte("XYZ"))
		_, err := d.Write([]byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nx\r\n--XYZ--"))
		require.NoError(t, err)
		assert.NoError(t, d.Close())
	})

	t.Run("write after close", func(t *testing.T) {
		d := NewDecoder([]byte("XYZ"))
		_, err := d.Write([]byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nx\r\n--XYZ--"))
		require.NoError(t, err)
		require.NoError(t, d.Close())
		_, err = d.Write([]byte("more"))
		assert.Error(t, err)
	})
}

func TestDecoderEmptyForm(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))
	events := feedAll(t, d, []byte("--XYZ--"), 1)
	require.NoError(t, d.Close())
	assert.Equal(t, []EventKind{EventEnd}, kinds(events))
}

func TestDecoderEpilogueIsDiscarded(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))
	body := []byte("--XYZ\r\nContent-Disposition: form-data; name=\"f\"\r\n\r\nx\r\n--XYZ--\r\ntrailing epilogue noise")
	events := feedAll(t, d, body, 5)
	require.NoError(t, d.Close())
	assert.Equal(t, EventEnd, events[len(events)-1].Kind)
}

func TestDecoderEmptyPartData(t *testing.T) {
	d := NewDecoder([]byte("XYZ"))
	a := NewAssembler(DefaultCharset)
	body := []byte("--XYZ\r\nContent-Disposition: form-data; name=\"empty\"\r\n\r\n\r\n--XYZ--")
	require.NoError(t, a.Feed(feedAll(t, d, body, len(body))))
	require.NoError(t, d.Close())

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "empty", items[0].FieldName)
	assert.Empty(t, items[0].Data)
}
