// Package config provides configuration parsing and validation for the
// nspid address book server.
//
// # Loading Configuration
//
//	cfg, err := config.LoadConfig("/etc/nspid/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
//	    log.Fatal(errs[0])
//	}
//
// Keys missing from the file keep the values of DefaultConfig.
//
// # Environment Variables
//
// Any value may reference the environment with ${VAR} or ${VAR:-default}:
//
//	storage:
//	  path: "${NSPID_DB:-/var/lib/nspid/nspid.db}"
//
// # Example Configuration
//
//	server:
//	  guid: "5a8e3b9c-2f0d-4e6a-9a71-1c3e5f7a9b2d"
//	  allowAnonymous: true
//
//	directory:
//	  seedFile: "/etc/nspid/seed.yaml"
//	  phoneticSort: true
//	  maxRestrictionDepth: 8
//	  maxExplicitTable: 10000
//
//	storage:
//	  path: "/var/lib/nspid/nspid.db"
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	codepages:
//	  supported: [1252, 932, 20261]
//
//	acl:
//	  defaultPolicy: "deny"
//	  rules:
//	    - displayType: distlist
//	      subject: authenticated
//	      properties: [AddressBookMember]
//	      rights: [all]
//
//	rest:
//	  enabled: true
//	  address: ":8080"
package config
