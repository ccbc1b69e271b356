// Package props composes property rows from directory objects.
//
// A Builder resolves each requested tag to a stored or computed value and
// runs it through the code page converter, so every operation that returns
// rows applies the same type reconciliation. Tags without a value yield a
// slot whose type is PtypErrorCode:
//
//	b := props.NewBuilder(store, converter, serverUID)
//	row := b.Row(obj, tags, props.Options{CodePage: 1252})
//	if row.HasErrors() {
//	    // at least one slot is valueless
//	}
package props
