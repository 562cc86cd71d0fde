package pkg

var (
	AppVersion = "2.1.0"
	AppName    = "Pulso"
)
