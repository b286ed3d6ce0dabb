package cache

// Keys builds every cache key the shop directory reads or writes, so the
// name index and the record entries always agree on naming.
//
//	<prefix>:shop_name:<name>   -> owner email
//	<prefix>:shop_email:<email> -> JSON shop record with products
type Keys struct {
	Prefix string
}

func (k Keys) ShopName(name string) string {
	return k.join("shop_name", name)
}

func (k Keys) ShopEmail(email string) string {
	return k.join("shop_email", email)
}

func (k Keys) join(kind, id string) string {
	if k.Prefix == "" {
		return kind + ":" + id
	}
	return k.Prefix + ":" + kind + ":" + id
}
