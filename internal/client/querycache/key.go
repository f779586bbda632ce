package querycache

// Key names a cached query: a whole collection or one entity in it.
type Key struct {
	Collection string
	ID         string
}

func Collection(name string) Key {
	return Key{Collection: name}
}

func Entity(name, id string) Key {
	return Key{Collection: name, ID: id}
}

func (k Key) String() string {
	if k.ID == "" {
		return k.Collection
	}
	return k.Collection + "/" + k.ID
}
