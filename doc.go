// Package stubwire compiles a unit under test with every declared
// collaborator replaced by an inert double, while selected
// collaborators can be given explicit behavior. It targets
// constructor-injected components: dependencies are declared by the
// constructor's parameters and by inject-tagged struct fields, by
// type, string token, or symbol token, optionally qualified by
// metadata.
//
// # Overview
//
// stubwire reflects a constructor's dependency surface, fabricates a
// structurally matching double for every slot, constructs the unit
// with real construction semantics, and returns the instance together
// with a lookup table from dependency identifier to the double that
// was actually wired in. It never instantiates real collaborator
// implementations and never validates business logic.
//
// # Basic Usage
//
// Start a session for the constructor, override what needs behavior,
// and compile:
//
//	builder, err := stubwire.New[*Widget](NewWidget)
//	if err != nil {
//	    t.Fatal(err)
//	}
//
//	err = builder.Mock(stubwire.Type[*ServiceA]()).Final(&ServiceA{
//	    Value: func() int { return 42 },
//	})
//
//	unit, err := builder.Compile()
//	// unit.Instance is a *Widget wired with doubles
//	// unit.Ref.Get(stubwire.Type[*ServiceB]()) is the generated double
//
// # Overrides
//
// Final wires a fixed value as-is. Using wires an implementation stub:
// the factory's partial value is merged over a freshly generated base
// double, so callable members it does not supply remain automatic
// stubs:
//
//	err = builder.Mock(stubwire.Type[*ServiceA]()).Using(func(newStub func() stubwire.Stub) any {
//	    return &ServiceA{Value: func() int { return 7 }}
//	})
//
// Overriding or looking up an identifier the unit never declared fails
// fast with an IdentifierNotFoundError.
//
// # Adapters
//
// Metadata reflection and double generation are two independent
// capability interfaces, Reflector and Generator, configured per
// session with WithReflector and WithGenerator. The adapters
// subpackages provide a dig parameter-object reflector and generators
// backed by gomock and testify mocks for interface-shaped
// collaborators.
//
// All reflection, graph building, and compilation is synchronous.
// Builder sessions are independent: each owns its override ledger and
// produces doubles that share no identity with any other session's.
package stubwire
