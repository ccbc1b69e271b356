// Package filter provides the restriction model used to build explicit
// tables, a text syntax for writing restrictions, and their evaluation
// against address book objects.
//
// # Restriction Types
//
//   - AND, OR and NOT combine child restrictions
//   - Content matches a string or binary property by full string, substring
//     or prefix, optionally ignoring case or loosely (whitespace-insensitive)
//   - Property compares a property with a value (<, <=, >, >=, ==, !=, like)
//   - Exist tests whether the object carries the property
//
// # Text Syntax
//
// Parse accepts an RFC 4515 style syntax with property names in place of
// attribute names:
//
//	(DisplayName=Bob*)                prefix content match, case-insensitive
//	(DisplayName=*smith*)             substring content match
//	(DisplayName~=alice  smith)       loose full string match
//	(Title=Engineer)                  property equality
//	(DepartmentName>=F)               property comparison
//	(SmtpAddress=*)                   existence
//	(Account=a*e)                     pattern match (like)
//	(&(DisplayName=Bob*)(!(Surname=Brown)))
//
// # Evaluating
//
//	r, err := filter.Parse("(&(DisplayName=Bob*)(Title=*))")
//	if err != nil {
//	    return err
//	}
//	if err := filter.Validate(r, 8); err != nil {
//	    return err // restriction too deep or malformed
//	}
//	ev := filter.NewEvaluator()
//	if ev.Evaluate(r, obj) {
//	    // obj qualifies
//	}
package filter
