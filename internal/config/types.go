package config

// Config holds all nftlend configuration.
type Config struct {
	// Secret is server-side only and never printed.
	Secret string `json:"my_secret,omitempty" mapstructure:"my_secret"`
	Public Public `json:"public"              mapstructure:"public"`

	Network       string              `json:"network"        mapstructure:"network"`
	RPCAlgorithm  string              `json:"rpc_algorithm"  mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs    map[string][]string `json:"custom_rpcs"    mapstructure:"custom_rpcs"`
	DefaultWallet string              `json:"default_wallet" mapstructure:"default_wallet"`
	LogLevel      string              `json:"log_level"      mapstructure:"log_level"`

	// internal: config dir path used for Save()
	configDir string
	envSecret string
}

// Public holds settings that are safe to expose to clients.
type Public struct {
	ClientID               string `json:"client_id"                mapstructure:"client_id"`
	ContractAddress        string `json:"contract_address"         mapstructure:"contract_address"`
	PaymentContractAddress string `json:"payment_contract_address" mapstructure:"payment_contract_address"`
	BuyContractAddress     string `json:"buy_contract_address"     mapstructure:"buy_contract_address"`
}
