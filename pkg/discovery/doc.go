// Package discovery finds Plugwise gateways on the local network.
//
// Smile and Stretch gateways announce themselves over mDNS/DNS-SD as
// _plugwise._tcp services. The host name carries the device identity
// (e.g. "smile123abc.local." for a Smile, "stretch000111.local." for a
// Stretch); TXT records carry the product and firmware version:
//
//	product=smile_thermo
//	version=4.0.15
//
// A discovered service is delivered as a ServiceInfo, an immutable
// record that the setup flow uses to pre-fill the connection input.
package discovery
