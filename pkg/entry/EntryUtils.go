package entry

import "github.com/coldharbor/rsm/pkg/utils"


//=========================================== Log Entry Utils


/*
	ToBytes/FromBytes round-trip a LogEntry for facades that persist it.
*/

func ToBytes(e *LogEntry) ([]byte, error) {
	return utils.EncodeStructToBytes[*LogEntry](e)
}

func FromBytes(data []byte) (*LogEntry, error) {
	return utils.DecodeBytesToStruct[LogEntry](data)
}
