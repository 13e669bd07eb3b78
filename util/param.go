package util

// Param is the broadcast channel data type
type Param struct {
	Entity *string
	Key    string
	Val    interface{}
}

// UniqueID returns unique identifier for parameter Entity/Key combination
func (p Param) UniqueID() string {
	key := p.Key
	if p.Entity != nil {
		key = *p.Entity + "." + key
	}
	return key
}
