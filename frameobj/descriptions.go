package frameobj

// These accessors hand the registry package the cached Description for
// each concrete class without exporting the backing package-level vars
// directly, keeping the cache's identity (pointer equality) intact.

func FrSHDescription() *Description      { return frshDescription }
func FrSEDescription() *Description      { return frseDescription }
func FrameHDescription() *Description    { return frameHDescription }
func RawDataDescription() *Description   { return rawDataDescription }
func AdcDataDescription() *Description   { return adcDataDescription }
func ProcDataDescription() *Description  { return procDataDescription }
func SerDataDescription() *Description   { return serDataDescription }
func SimDataDescription() *Description   { return simDataDescription }
func EventDescription() *Description     { return eventDescription }
func SimEventDescription() *Description  { return simEventDescription }
func DetectorDescription() *Description  { return detectorDescription }
func HistoryDescription() *Description   { return historyDescription }
func SummaryDescription() *Description   { return summaryDescription }
func TableDescription() *Description     { return tableDescription }
func VectorDescription() *Description    { return vectorDescription }
