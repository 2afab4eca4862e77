// Package utils provides loose type conversions used when mapping untyped JSON
// documents (Redfish resources, metadata maps) onto inventory fields.
package utils
