package security

// In-memory client registry for service-to-service tokens (replace with
// DB/config later).
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","orders.write","orders.admin"}
	Enabled bool
}

var Clients = map[string]Client{
	"storefront-web": {ID: "storefront-web", Secret: "storefront-web-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"office-console": {ID: "office-console", Secret: "office-console-secret", Perms: []string{"orders.read", "orders.write", "orders.admin"}, Enabled: true},
	"svc-analytics":  {ID: "svc-analytics", Secret: "ana-secret", Perms: []string{"orders.read"}, Enabled: true},
}
