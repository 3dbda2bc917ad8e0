// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vcard converts between vCard files (versions 2.1, 3.0 and 4.0)
// and contacts. Only the properties merge-engine stores are read: FN, N,
// UID, EMAIL, TEL, ORG and NOTE. Everything else is skipped.
package vcard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	govcard "github.com/emersion/go-vcard"

	"github.com/pdiddy/merge-engine/pkg/types"
)

// Decode reads every VCARD in r. Returned contacts have no ID or
// collection; the caller assigns them.
func Decode(r io.Reader) ([]types.Contact, error) {
	dec := govcard.NewDecoder(r)
	var contacts []types.Contact
	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing vCard %d: %w", len(contacts)+1, err)
		}
		contacts = append(contacts, contactFromCard(card))
	}
	return contacts, nil
}

func contactFromCard(card govcard.Card) types.Contact {
	c := types.Contact{
		UID:           types.StringPtr(strings.TrimSpace(card.Value(govcard.FieldUID))),
		FormattedName: strings.TrimSpace(card.PreferredValue(govcard.FieldFormattedName)),
		Note:          card.Value(govcard.FieldNote),
	}
	if c.FormattedName == "" {
		c.FormattedName = displayName(card.Name())
	}
	for _, f := range card[govcard.FieldEmail] {
		if v := strings.TrimSpace(f.Value); v != "" {
			c.Emails = append(c.Emails, types.Email{Address: strings.TrimPrefix(v, "mailto:")})
		}
	}
	for _, f := range card[govcard.FieldTelephone] {
		if v := strings.TrimSpace(f.Value); v != "" {
			c.Phones = append(c.Phones, types.Phone{Number: strings.TrimPrefix(v, "tel:")})
		}
	}
	// ORG is organization;unit;unit...; only the organization is kept.
	if org := card.Value(govcard.FieldOrganization); org != "" {
		c.Organization = strings.TrimSpace(strings.SplitN(org, ";", 2)[0])
	}
	return c
}

// displayName orders the components of a structured N property the way
// they are spoken.
func displayName(n *govcard.Name) string {
	if n == nil {
		return ""
	}
	var out []string
	for _, p := range []string{n.HonorificPrefix, n.GivenName, n.AdditionalName, n.FamilyName, n.HonorificSuffix} {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Encode writes contacts as vCard 4.0.
func Encode(w io.Writer, contacts []types.Contact) error {
	enc := govcard.NewEncoder(w)
	for i, c := range contacts {
		if err := enc.Encode(cardFromContact(c)); err != nil {
			return fmt.Errorf("writing vCard %d: %w", i+1, err)
		}
	}
	return nil
}

func cardFromContact(c types.Contact) govcard.Card {
	card := make(govcard.Card)
	card.SetValue(govcard.FieldVersion, "4.0")
	card.SetValue(govcard.FieldFormattedName, c.FormattedName)
	if c.UID != nil && *c.UID != "" {
		card.SetValue(govcard.FieldUID, *c.UID)
	}
	for _, e := range c.Emails {
		card.AddValue(govcard.FieldEmail, e.Address)
	}
	for _, p := range c.Phones {
		card.AddValue(govcard.FieldTelephone, p.Number)
	}
	if c.Organization != "" {
		card.SetValue(govcard.FieldOrganization, c.Organization)
	}
	if c.Note != "" {
		card.SetValue(govcard.FieldNote, c.Note)
	}
	return card
}
