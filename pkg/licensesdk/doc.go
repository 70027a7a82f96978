/*
Package licensesdk is a client for the Daftar licensing service.

# Licenses

A Client verifies and activates license keys on behalf of an installed
application:

	client := licensesdk.NewClient("https://license.example.com")

	// Check a key without binding it
	lic, err := client.Verify(ctx, key)

	// Bind the key to this machine on first use
	lic, err = client.Activate(ctx, licensesdk.ActivateRequest{
		LicenseKey: key,
		DeviceID:   machineID,
	})

# Errors

Failed calls return an *APIError carrying the service's stable code:

	if licensesdk.IsCode(err, licensesdk.CodeDeviceMismatch) {
		// the key is bound to another machine
	}

A BLOCKED error also carries the record status in APIError.LicenseStatus.
A DEVICE_MISMATCH error never reveals which device the key is bound to.

# Admin

The admin surface takes an admin JWT or a service token:

	admin := client.Admin(token)

	lic, err = admin.RegisterLicense(ctx, key)
	lic, err = admin.Block(ctx, key)
	lic, err = admin.Reset(ctx, key)
	entries, err := admin.RecentActivity(ctx, 50)
*/
package licensesdk
