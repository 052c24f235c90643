package handlers

// LegacyServices exposes legacyServices to the external test package.
var LegacyServices = legacyServices
