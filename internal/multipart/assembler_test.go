package multipart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblerAccumulatesSplitHeaderEvents(t *testing.T) {
	a := NewAssembler(DefaultCharset)

	// A single logical header delivered as multiple sub-events, the way
	// the decoder produces it when the line straddles chunks.
	err := a.Feed([]Event{
		{Kind: EventPartBegin},
		{Kind: EventHeaderField, Data: []byte("Content-")},
		{Kind: EventHeaderField, Data: []byte("Disposition")},
		{Kind: EventHeaderValue, Data: []byte("form-data; ")},
		{Kind: EventHeaderValue, Data: []byte("name=\"split\"")},
		{Kind: EventHeaderEnd},
		{Kind: EventHeadersFinished},
		{Kind: EventPartData, Data: []byte("pay")},
		{Kind: EventPartData, Data: []byte("load")},
		{Kind: EventPartEnd},
		{Kind: EventEnd},
	})
	require.NoError(t, err)

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "split", items[0].FieldName)
	assert.Empty(t, items[0].Headers)
	assert.Equal(t, []byte("payload"), items[0].Data)
}

func TestAssemblerExcludesContentDisposition(t *testing.T) {
	a := NewAssembler(DefaultCharset)

	err := a.Feed([]Event{
		{Kind: EventPartBegin},
		{Kind: EventHeaderField, Data: []byte("Content-Type")},
		{Kind: EventHeaderValue, Data: []byte("application/octet-stream")},
		{Kind: EventHeaderEnd},
		{Kind: EventHeaderField, Data: []byte("CONTENT-DISPOSITION")},
		{Kind: EventHeaderValue, Data: []byte("form-data; name=\"blob\"")},
		{Kind: EventHeaderEnd},
		{Kind: EventHeadersFinished},
		{Kind: EventPartData, Data: []byte{0x00, 0x01}},
		{Kind: EventPartEnd},
	})
	require.NoError(t, err)

	items := a.Items()
	require.Len(t, items, 1)
	require.Len(t, items[0].Headers, 1)
	assert.Equal(t, []byte("content-type"), items[0].Headers[0].Name)
	assert.Equal(t, []byte("application/octet-stream"), items[0].Headers[0].Value)
	assert.Equal(t, "blob", items[0].FieldName)
}

func TestAssemblerMissingName(t *testing.T) {
	t.Run("no name parameter", func(t *testing.T) {
		a := NewAssembler(DefaultCharset)
		err := a.Feed([]Event{
			{Kind: EventPartBegin},
			{Kind: EventHeaderField, Data: []byte("Content-Disposition")},
			{Kind: EventHeaderValue, Data: []byte("form-data; filename=\"x.bin\"")},
			{Kind: EventHeaderEnd},
			{Kind: EventHeadersFinished},
		})
		assert.ErrorIs(t, err, ErrMissingFieldName)
	})

	t.Run("no content-disposition at all", func(t *testing.T) {
		a := NewAssembler(DefaultCharset)
		err := a.Feed([]Event{
			{Kind: EventPartBegin},
			{Kind: EventHeaderField, Data: []byte("Content-Type")},
			{Kind: EventHeaderValue, Data: []byte("text/plain")},
			{Kind: EventHeaderEnd},
			{Kind: EventHeadersFinished},
		})
		assert.ErrorIs(t, err, ErrMissingFieldName)
	})
}

func TestAssemblerCharsetDecoding(t *testing.T) {
	// "café" in latin-1.
	a := NewAssembler("iso-8859-1")
	err := a.Feed([]Event{
		{Kind: EventPartBegin},
		{Kind: EventHeaderField, Data: []byte("Content-Disposition")},
		{Kind: EventHeaderValue, Data: append([]byte("form-data; name=\"caf"), 0xE9, '"')},
		{Kind: EventHeaderEnd},
		{Kind: EventHeadersFinished},
		{Kind: EventPartEnd},
	})
	require.NoError(t, err)

	items := a.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "café", items[0].FieldName)
}

func TestAssemblerMultipleParts(t *testing.T) {
	a := NewAssembler(DefaultCharset)

	part := func(name, data string) []Event {
		return []Event{
			{Kind: EventPartBegin},
			{Kind: EventHeaderField, Data: []byte("Content-Disposition")},
			{Kind: EventHeaderValue, Data: []byte("form-data; name=\"" + name + "\"")},
			{Kind: EventHeaderEnd},
			{Kind: EventHeadersFinished},
			{Kind: EventPartData, Data: []byte(data)},
			{Kind: EventPartEnd},
		}
	}

	require.NoError(t, a.Feed(part("one", "1")))
	require.NoError(t, a.Feed(part("two", "2")))
	require.NoError(t, a.Feed([]Event{{Kind: EventEnd}}))

	items := a.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "one", items[0].FieldName)
	assert.Equal(t, []byte("1"), items[0].Data)
	assert.Equal(t, "two", items[1].FieldName)
	assert.Equal(t, []byte("2"), items[1].Data)
}
