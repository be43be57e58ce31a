// Package common provides the configuration and logging shared by the client
// side packages and the command line tool.
//
// Key Components:
//
//   - ClientConfig: Connection parameters of the remote store (discrete host,
//     port, access key and ssl settings or a redis connection string), the key
//     namespace of the application, timeouts and the idle capacity of the
//     connection pool. String() prints the configuration with secrets masked.
//
//   - Logger: Custom logging implementation that plugs into the logger facade
//     of Dragonboat. Every package obtains its logger with logger.GetLogger(name),
//     InitLoggers installs the factory and sets the level of all dSess loggers.
package common
