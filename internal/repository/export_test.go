package repository

// SetupTestPool expone el pool de integración a los tests externos del paquete.
var SetupTestPool = setupTestPool
