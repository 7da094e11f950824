// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; every model here offers ToDomain and a
// FromDomain constructor so repositories never leak gorm types upward.
package models
