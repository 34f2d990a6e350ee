package clustering

type Logger interface {
	Debug(message string, module string)
	Info(message string, module string)
	Warning(message string, module string)
	Error(string)
}

type silentLogger struct{}

func (silentLogger) Debug(string, string)   {}
func (silentLogger) Info(string, string)    {}
func (silentLogger) Warning(string, string) {}
func (silentLogger) Error(string)           {}

var logger Logger = silentLogger{}

func SetLogger(l Logger) {
	if l == nil {
		l = silentLogger{}
	}
	logger = l
}
