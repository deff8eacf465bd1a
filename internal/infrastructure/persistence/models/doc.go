// Package models contains the GORM persistence models for the front desk tables.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain / FromDomain.
//
// Tables:
//   - rooms: one row per rentable room, version-checked on update
//   - stays: the active stay of an occupied room, at most one per room
//   - payments: append-only settlement records, unique per stay
//   - service_charges: ledger lines of active stays
//   - service_catalog: sellable services and their current prices
package models
