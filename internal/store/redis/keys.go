package redis

const (
	// KeyMappings is the hash of site key -> company id
	KeyMappings = "susradar:mappings"
	// KeyCompanies is the hash of company id -> JSON record
	KeyCompanies = "susradar:companies"
	// KeyAuth is the hash holding sync credentials
	KeyAuth = "susradar:auth"
)

// Fields of the KeyAuth hash
const (
	authFieldToken     = "token"
	authFieldUsername  = "username"
	authFieldServerURL = "server_url"
)

// MappingsKey returns the Redis key of the mappings hash
func MappingsKey() string {
	return KeyMappings
}

// CompaniesKey returns the Redis key of the companies hash
func CompaniesKey() string {
	return KeyCompanies
}

// AuthKey returns the Redis key of the credentials hash
func AuthKey() string {
	return KeyAuth
}
