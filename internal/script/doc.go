// Package script models loadable customer code as evaluated HCL namespaces.
//
// A customer script is an .hcl file. Loading it produces a Namespace: an
// attribute table whose values are callables, nested namespaces, or plain
// constants. A handler block binds an attribute to a Go symbol registered in
// the process-wide symbol table by a compiled-in module, optionally
// specialized with HCL arguments:
//
//	handler "invoke" {
//	  uses = "proxy:invoke"
//	  args = { endpoint = "http://127.0.0.1:8000/v1/completions" }
//	}
//
//	group "Handler" {
//	  handler "process" { uses = "std:echo" }
//	}
//
//	threshold = 10
//
// Group blocks nest namespaces, so references like
// "model.hcl:Handler.process" walk into them. Top-level attributes evaluate
// to constants; a null attribute is the absence sentinel and is reported as
// such when a reference tries to call it.
package script
