// Package table implements the address book table and cursor engine.
//
// A View is a sorted snapshot of one address list taken when it is opened.
// Every operation receives the caller's STAT by value, opens a view, and
// returns an updated copy; the caller's STAT is never modified, so a failed
// operation leaves the cursor exactly as it was.
//
// Display names are ordered with the collation of the STAT sort locale,
// ignoring case, and ties are broken by MId so the order is total.
package table
