package bank

// Config is a configuration for the bank application.
type Config struct {
	HTTPAddr string
	BankName string
	// BankBIC identifies the issuing bank; its last 3 digits feed the
	// account-number checksum.
	BankBIC string
	// ArchiveDSN, when set, enables the Postgres ledger archive.
	ArchiveDSN string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr: "localhost:8080",
		BankName: "BankBackEnd",
		BankBIC:  "044525225",
	}
}
