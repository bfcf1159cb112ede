package smile

import "fmt"

type domainObjects struct {
	Gateway *gatewayXML `xml:"gateway"`
}

type systemStatus struct {
	Gateway *gatewayXML `xml:"gateway"`
}

type gatewayXML struct {
	ID              string `xml:"id,attr"`
	Hostname        string `xml:"hostname"`
	VendorModel     string `xml:"vendor_model"`
	Product         string `xml:"product"`
	FirmwareVersion string `xml:"firmware_version"`
	Firmware        string `xml:"firmware"`
}

func (g *gatewayXML) toGateway(legacy bool) (*Gateway, error) {
	vendorModel := g.VendorModel
	if vendorModel == "" {
		vendorModel = g.Product
	}
	model, ok := LookupModel(vendorModel)
	if !ok {
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedDevice, vendorModel)
	}
	if g.Hostname == "" && g.ID == "" {
		return nil, fmt.Errorf("%w: gateway without identifier", ErrUnsupportedDevice)
	}

	firmware := g.FirmwareVersion
	if firmware == "" {
		firmware = g.Firmware
	}

	return &Gateway{
		HostnameID:      g.Hostname,
		GatewayID:       g.ID,
		Name:            model.FriendlyName,
		VendorModel:     vendorModel,
		FirmwareVersion: firmware,
		Type:            model.Type,
		Legacy:          legacy,
	}, nil
}
