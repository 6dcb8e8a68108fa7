/*
Package registry resolves raw table items to their record kinds.

Every kind is identified by the prefix of its tenant-free partition key and
the prefix of its sort key:

	name, rec, err := registry.Resolve("acme", item)
	// name == "document-attribute", rec.(*records.DocumentAttribute)

All built-in record kinds are registered at init. Additional kinds are added
with Register, typically from init functions; registering a prefix pair
twice panics.
*/
package registry
