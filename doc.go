// Package papertrade implements a paper-trading portfolio simulator.
//
// The simulator owns a single-record ledger (cash balance plus share
// holdings) persisted to a flat JSON file, prices positions from market
// data bars, and exposes buy, sell and valuation operations. Historical
// bars are cached per symbol as CSV files; live quotes come from a
// QuoteSource such as the yahoo subpackage.
package papertrade
