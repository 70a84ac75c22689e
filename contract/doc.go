// Package contract loads criteria for callables from HCL files and applies
// them to a decorate.Namespace.
//
// A contract file holds one block per callable:
//
//	contract "Add" {
//	  description = "adds two positive numbers"
//	  args        = [positive, positive]
//	  returns     = int
//	}
//
//	contract "Account.Deposit" {
//	  args = [any, oneof(int, float64)]
//	}
//
// Block labels are qualified names as decorate presents them: a function
// name, or Class.member. Property setters and deleters are addressed as
// Class.member.set and Class.member.del. Each element of args is a criteria
// for that positional parameter (the receiver comes first for methods).
package contract
