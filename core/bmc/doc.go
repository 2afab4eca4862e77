// Package bmc fetches live hardware inventories from baseboard management
// controllers.
//
// Two drivers implement Client:
//
//   - redfish walks the Redfish tree (Processors, Memory, Storage and Drives,
//     EthernetInterfaces, Chassis, Managers) with retried HTTP requests.
//   - bmclib opens a bmclib session through its redfish and vendor API
//     providers and flattens the returned common.Device.
//
// Both return the complete component list or an error wrapping ErrUnavailable.
// A partial inventory is never returned.
package bmc
