// Package smile implements the connect handshake for Plugwise gateways.
//
// Supported gateways are the Smile family (P1, Anna, Adam) and the
// legacy Stretch. A gateway is reached over HTTP using basic
// authentication; the username is either "smile" or "stretch" and the
// password is the 8-character Smile ID printed on the device.
//
// # Handshake
//
// Connect requests /core/domain_objects and locates the gateway
// element. Older firmware without a gateway element is probed through
// /system. The result is a Gateway describing the validated device:
//
//	client := smile.New(smile.Config{
//	    Host:     "192.168.1.20",
//	    Password: "abcdefgh",
//	    Username: smile.UsernameSmile,
//	    Session:  smile.NewSession(),
//	})
//	gw, err := client.Connect(ctx)
//
// # Errors
//
// ErrInvalidAuthentication is returned when the gateway rejects the
// credentials. Every other device or protocol level failure wraps
// ErrProtocol.
//
// Only the handshake lives here; reading thermostats, meters and
// switches is outside the scope of this package.
package smile
