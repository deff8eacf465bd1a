// Package billing provides the money side of a stay.
//
// Key parts:
//   - PricingEngine: pure room-charge calculation for the hourly, daily (noon
//     cutover), overnight and monthly rate structures
//   - ServiceCharge: ancillary line item priced at the moment it was added
//   - Payment: immutable settlement record written once per completed stay
//
// The billing domain reads Room and Stay from the room domain and never
// mutates them.
package billing
