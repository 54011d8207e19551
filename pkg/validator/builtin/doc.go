// Package builtin provides the standard rule catalog and its messages.
//
//	reg := validator.NewRegistry()
//	if err := builtin.Install(reg); err != nil {
//	    return err
//	}
//	if err := builtin.LoadMessages(ctx, dict); err != nil {
//	    return err
//	}
//
// Rules working on strings accept collections too and then require every
// element to pass. Numeric params are cast with the same coercion as
// values: numbers, numeric strings and booleans are numbers, anything else
// is NaN and fails.
package builtin
