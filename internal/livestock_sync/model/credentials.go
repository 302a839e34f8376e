package model

import "strings"

// DefaultInstitutionMarker identifies farms run by the university, which holds its own
// animal-list account.
const DefaultInstitutionMarker = "충남대학교"

// CredentialPair is the (id, key) used against the animal-list source.
type CredentialPair struct {
	ID  string
	Key string
}

// CredentialRouting chooses a credential pair from a farm name.
type CredentialRouting struct {
	Default           CredentialPair
	Institution       CredentialPair
	InstitutionMarker string
}

// CredentialsFor returns the institution pair when farmName contains the marker and the
// default pair otherwise.
func (r CredentialRouting) CredentialsFor(farmName string) CredentialPair {
	marker := r.InstitutionMarker
	if marker == "" {
		marker = DefaultInstitutionMarker
	}
	if strings.Contains(farmName, marker) {
		return r.Institution
	}
	return r.Default
}
