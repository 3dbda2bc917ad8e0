// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vcard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/merge-engine/pkg/types"
)

const sampleCards = `BEGIN:VCARD
VERSION:3.0
UID:urn:uuid:4fbe8971-0bc3-424c-9c26-36c3e1eff6b1
FN:Jane Doe
N:Doe;Jane;;;
EMAIL;TYPE=INTERNET,HOME:jane@x.com
item1.EMAIL;TYPE=INTERNET:jane.doe@work.com
TEL;TYPE=CELL:+1 (555) 123-4567
ORG:Acme\, Inc.;Research
NOTE:Met at the\nconference
X-CUSTOM:ignored
END:VCARD
BEGIN:VCARD
VERSION:4.0
N:Smith;Bob;Lee;Dr.;Jr.
TEL;VALUE=uri:tel:+44-20-7946-0000
EMAIL:mailto:bob@example.org
END:VCARD
`

func TestDecode(t *testing.T) {
	contacts, err := Decode(strings.NewReader(sampleCards))
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	jane := contacts[0]
	require.NotNil(t, jane.UID)
	assert.Equal(t, "urn:uuid:4fbe8971-0bc3-424c-9c26-36c3e1eff6b1", *jane.UID)
	assert.Equal(t, "Jane Doe", jane.FormattedName)
	assert.Equal(t, []types.Email{{Address: "jane@x.com"}, {Address: "jane.doe@work.com"}}, jane.Emails)
	assert.Equal(t, []types.Phone{{Number: "+1 (555) 123-4567"}}, jane.Phones)
	assert.Equal(t, "Acme, Inc.", jane.Organization)
	assert.Equal(t, "Met at the\nconference", jane.Note)

	bob := contacts[1]
	assert.Nil(t, bob.UID)
	assert.Equal(t, "Dr. Bob Lee Smith Jr.", bob.FormattedName)
	assert.Equal(t, []types.Phone{{Number: "+44-20-7946-0000"}}, bob.Phones)
	assert.Equal(t, []types.Email{{Address: "bob@example.org"}}, bob.Emails)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated", "BEGIN:VCARD\nFN:Jane\n"},
		{"end without begin", "FN:Jane\nEND:VCARD\n"},
		{"malformed line", "BEGIN:VCARD\nFN Jane\nEND:VCARD\n"},
		{"second card broken", "BEGIN:VCARD\nFN:Jane\nEND:VCARD\nBEGIN:VCARD\nFN:Bob\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, "parsing vCard")
		})
	}
}

func TestDecodeUnescapesUID(t *testing.T) {
	input := "BEGIN:VCARD\r\nVERSION:4.0\r\nUID:team\\,alpha-7\r\nFN:Team Alpha\r\nEND:VCARD\r\n"

	contacts, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.NotNil(t, contacts[0].UID)
	assert.Equal(t, "team,alpha-7", *contacts[0].UID)
}

func TestDecodeEmpty(t *testing.T) {
	contacts, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	uid := "abc-123"
	in := []types.Contact{
		{
			UID:           &uid,
			FormattedName: "Doe, Jane; PhD",
			Emails:        []types.Email{{Address: "jane@x.com"}},
			Phones:        []types.Phone{{Number: "555-0100"}, {Number: "555-0101"}},
			Organization:  "Acme",
			Note:          "line one\nline two",
		},
		{FormattedName: "Bob"},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	assert.Contains(t, buf.String(), "VERSION:4.0\r\n")

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
