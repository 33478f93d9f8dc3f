package umt

// Definition is what a plugin contributes to an engine.
type Definition struct {
	Supports    []Support
	OnCreate    []CreateHook
	Serializers []Serializer
}

// Plugin builds its Definition from the engine it is registered with, so
// that hooks and parsers can call back into Engine.N, Engine.Parse,
// Engine.Serialize and Engine.MimeTypeOf.
type Plugin func(e *Engine) Definition

// Static wraps a Definition that does not need the engine.
func Static(def Definition) Plugin {
	return func(*Engine) Definition { return def }
}
