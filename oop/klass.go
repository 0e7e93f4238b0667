package oop

// ClassLoaderData represents the loader that defined a group of classes.
// Holder is the loader's representative heap object; keeping it reachable
// is what keeps the loader's metadata alive across a collection.
// A nil Holder models the bootstrap loader, which is always alive.
type ClassLoaderData struct {
	Holder Ref
}

// Klass is class metadata. It is not itself a heap object; the only edge
// it contributes to the object graph is its class-loader holder.
type Klass struct {
	Name   string
	Loader *ClassLoaderData
}
