// Package gen turns loaded schemas into generated data-access artifacts.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Schema description (*.yaml, *.json)
//	        ↓
//	   load.Schema
//	        ↓
//	   Graph (types, fields, relations, platform, type registry)
//	        ↓
//	   Builders, one per role (object, query, entitymap, ddl, ...)
//	        ↓
//	   Writer (filesystem or memory)
//
// # Key Types
//
//   - Graph: holds all Type definitions, the Platform of the default
//     connection and the Registry of type handlers
//   - Type: an entity with its fields, relations and inheritance
//   - Field: a column with its semantic type, handler and raw default
//   - Relation: a relation between two types (O2O, O2M, M2O, M2M)
//   - Config: global configuration for code generation
//
// # Default values
//
// ResolveDefault turns the raw default of a field into a Literal. The
// dispatch is on the semantic category of the field: temporal defaults
// are parsed and reformatted with the platform formatter, enum defaults
// become their ordinal, primitives are coerced to the handler kind,
// objects are wrapped in a constructor call and arrays become slice
// literals while their text is kept verbatim.
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: Schema definition errors
//   - ConfigError: Configuration errors
//   - EdgeError: Relation errors
//   - GenerationError: Code generation errors
//   - ValidationError: invalid column attributes of a field
//   - InvalidTemporalDefaultError, InvalidEnumDefaultError,
//     InvalidArrayDefaultError and UnsupportedDefaultTypeError: default
//     value resolution errors
//
// Example error handling:
//
//	res, err := gen.NewGenerator(graph, gen.WithBuilders(om.Builders())).Generate(ctx)
//	if err != nil {
//	    var enumErr *gen.InvalidEnumDefaultError
//	    if errors.As(err, &enumErr) {
//	        log.Printf("bad default %q for %s", enumErr.Value, enumErr.Field)
//	    }
//	    return err
//	}
package gen
