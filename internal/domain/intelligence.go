package domain

import "slices"

// Intelligence accumulates identifiers extracted from a conversation.
// Each list behaves as an insertion-ordered set.
type Intelligence struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

func (i *Intelligence) AddBankAccount(v string) bool  { return addUnique(&i.BankAccounts, v) }
func (i *Intelligence) AddUPIID(v string) bool        { return addUnique(&i.UPIIDs, v) }
func (i *Intelligence) AddPhishingLink(v string) bool { return addUnique(&i.PhishingLinks, v) }
func (i *Intelligence) AddPhoneNumber(v string) bool  { return addUnique(&i.PhoneNumbers, v) }
func (i *Intelligence) AddKeyword(v string) bool      { return addUnique(&i.SuspiciousKeywords, v) }

// Merge folds other into i, keeping i's existing order and appending unseen values.
func (i *Intelligence) Merge(other Intelligence) {
	for _, v := range other.BankAccounts {
		i.AddBankAccount(v)
	}
	for _, v := range other.UPIIDs {
		i.AddUPIID(v)
	}
	for _, v := range other.PhishingLinks {
		i.AddPhishingLink(v)
	}
	for _, v := range other.PhoneNumbers {
		i.AddPhoneNumber(v)
	}
	for _, v := range other.SuspiciousKeywords {
		i.AddKeyword(v)
	}
}

// IdentifierCount is the number of actionable identifiers collected.
// Keywords are not identifiers.
func (i *Intelligence) IdentifierCount() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhishingLinks) + len(i.PhoneNumbers)
}

// Clone returns a deep copy whose lists are never nil, so JSON encodes them as [].
func (i *Intelligence) Clone() Intelligence {
	return Intelligence{
		BankAccounts:       cloneList(i.BankAccounts),
		UPIIDs:             cloneList(i.UPIIDs),
		PhishingLinks:      cloneList(i.PhishingLinks),
		PhoneNumbers:       cloneList(i.PhoneNumbers),
		SuspiciousKeywords: cloneList(i.SuspiciousKeywords),
	}
}

func addUnique(set *[]string, v string) bool {
	if v == "" || slices.Contains(*set, v) {
		return false
	}
	*set = append(*set, v)
	return true
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
