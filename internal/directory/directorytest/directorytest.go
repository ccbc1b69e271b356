// Package directorytest provides a populated address book for tests.
package directorytest

import (
	"testing"

	"github.com/KilimcininKorOglu/nspid/internal/directory"
	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// DN prefix shared by fixture recipients.
const Recipients = "/o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn="

// Fixture DNs.
const (
	AliceDN  = Recipients + "alice"
	BobJDN   = Recipients + "bobj"
	BobBDN   = Recipients + "bobb"
	CarolDN  = Recipients + "carol"
	DaveDN   = Recipients + "dave"
	EngDLDN  = Recipients + "engineering"
	AgentDN  = Recipients + "buildagent"
	SalesDN  = "/o=Contoso/cn=addrlists/cn=sales"
	UserTmpl = "/o=Contoso/cn=templates/cn=409/cn=mailuser"
	SMTPTmpl = "/o=Contoso/cn=templates/cn=409/cn=smtp"
)

// SeedYAML is the fixture address book.
const SeedYAML = `
organization: Contoso
containers:
  - name: Sales
    dn: /o=Contoso/cn=addrlists/cn=sales
  - name: Sales East
    dn: /o=Contoso/cn=addrlists/cn=sales-east
    parent: Sales
objects:
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=alice
    type: mailuser
    containers: [Sales]
    props:
      DisplayName: Alice Smith
      Account: alice
      GivenName: Alice
      Surname: Smith
      SmtpAddress: alice@contoso.com
      Title: Engineer
      OfficeLocation: Building 1
      AddressBookPhoneticDisplayName: Arisu Sumisu
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=bobj
    type: mailuser
    containers: [Sales]
    props:
      DisplayName: Bob Jones
      Account: bobj
      GivenName: Bob
      Surname: Jones
      SmtpAddress: bob.jones@contoso.com
      AddressBookPhoneticDisplayName: Bobu Jonzu
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=bobb
    type: mailuser
    props:
      DisplayName: Bob Brown
      Account: bobb
      GivenName: Bob
      Surname: Brown
      SmtpAddress: bob.brown@contoso.com
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=carol
    type: mailuser
    props:
      DisplayName: carol white
      Account: carol
      SmtpAddress: carol@contoso.com
      DepartmentName: Finance
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=dave
    type: mailuser
    props:
      DisplayName: Dave Miller
      Account: dave
      SmtpAddress: dave@contoso.com
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=engineering
    type: distlist
    props:
      DisplayName: Engineering DL
      Account: engineering
      SmtpAddress: engineering@contoso.com
  - dn: /o=Contoso/ou=Exchange Administrative Group/cn=Recipients/cn=buildagent
    type: agent
    props:
      DisplayName: Build Agent
      Account: buildagent
templates:
  - dn: /o=Contoso/cn=templates/cn=409/cn=mailuser
    name: Mail User
    type: mailuser
    locale: 1033
    templateData: AQIDBA==
    scriptData: BQY=
    helpFileName: user.hlp
    helpFileContents: BwgJ
  - dn: /o=Contoso/cn=templates/cn=409/cn=smtp
    name: Internet Address
    type: remote_mailuser
    locale: 1033
    addressType: SMTP
    creation: true
    templateData: CgsM
`

// NewStore builds the fixture store.
func NewStore(t testing.TB, opts ...directory.Option) *directory.Store {
	t.Helper()

	seed, err := directory.ParseSeed([]byte(SeedYAML))
	if err != nil {
		t.Fatalf("parse fixture seed: %v", err)
	}
	store, err := seed.Build(opts...)
	if err != nil {
		t.Fatalf("build fixture store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// MustMId returns the MId of dn or fails the test.
func MustMId(t testing.TB, store *directory.Store, dn string) nspi.MId {
	t.Helper()
	mid := store.MIdByDN(dn)
	if mid == 0 {
		t.Fatalf("fixture object %s not found", dn)
	}
	return mid
}

// MustContainer returns the container ID of the address list with dn.
func MustContainer(t testing.TB, store *directory.Store, dn string) uint32 {
	t.Helper()
	return uint32(MustMId(t, store, dn))
}
