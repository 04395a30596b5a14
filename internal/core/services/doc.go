// Package services implements the driving ports: upload intake, the
// conversion orchestrator, search and the bulk importer. Services depend
// only on the driven port interfaces; adapters are injected at startup.
package services
