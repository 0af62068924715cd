// Package constraint provides a two-phase declarative constraint validator:
//
// - A static checker that verifies every constraint attached to a field or type is
//   legal for that type and consistent with its siblings (Check/CheckType/CheckField)
// - A recursive runtime walker that evaluates a Value against its RecordSchema and
//   reports every violated constraint with a JSON Pointer path (Validate)
// - A Validator that caches static results per schema and gates runtime validation
//
// Constraints are grouped in categories (Number, String, Array, Boolean). A field's
// declared Kind selects the category; the category answers which constraint names,
// combinations and literals are legal.
//
// Design policy:
// - Keep only public APIs in the root package; put token decoding under internal/.
// - Schema loading lives in schemafile/, value decoding in decode/, the CLI under
//   cmd/constraintcheck.
// - Runtime violations are data (Result), schema errors are Diagnostics.
//
// Typical usage:
//
//	person := constraint.NewRecord("Person").
//		Field("age", constraint.Integer(), constraint.ConstraintSpec{
//			constraint.MinValue: 0,
//			constraint.MaxValue: 150,
//		})
//	if diags := constraint.Check(person); len(diags) > 0 {
//		return diags
//	}
//	res := constraint.Validate(constraint.RecordValue(map[string]constraint.Value{
//		"age": constraint.IntValue(200),
//	}), person)
//	// res.Constraints() == []string{"maxValue"}
package constraint
