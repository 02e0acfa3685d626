package kvstore

import "strings"

const sep = "\x00"

func join(parts ...string) []byte {
	return []byte(strings.Join(parts, sep))
}

func edgeKey(tenant, id string) []byte {
	return join("t", tenant, "e", id)
}

func edgePrefix(tenant string) []byte {
	return join("t", tenant, "e", "")
}

func outKey(tenant, parent, id string) []byte {
	return join("t", tenant, "o", parent, id)
}

func outPrefix(tenant, parent string) []byte {
	return join("t", tenant, "o", parent, "")
}

func inKey(tenant, component, id string) []byte {
	return join("t", tenant, "i", component, id)
}

func inPrefix(tenant, component string) []byte {
	return join("t", tenant, "i", component, "")
}

func pairKey(tenant, parent, component string) []byte {
	return join("t", tenant, "u", parent, component)
}

func tenantKey(tenant string) []byte {
	return join("n", tenant)
}

func tenantPrefix() []byte {
	return join("n", "")
}

// lastPart returns the trailing id of an index key.
func lastPart(key []byte) string {
	s := string(key)
	return s[strings.LastIndex(s, sep)+1:]
}
