package errors

import "errors"

// Status is the coarse outcome of an operation. Every Kind maps to exactly one
// Status; Success is reserved for a nil error.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusErr
	StatusNullPtr
	StatusMemAlloc
	StatusMemFree
	StatusInvalidType
	StatusInvalidSize
	StatusTableFull
	StatusDNE
	StatusOOB
	StatusRefInUse
	StatusInvalidRef
	StatusInvalidData
	StatusTimeout
	StatusFile
	StatusRead
	StatusWrite
	StatusCRC
)

var statusNames = [...]string{
	StatusSuccess:     "SUCCESS",
	StatusErr:         "ERR",
	StatusNullPtr:     "NULLPTR_ERROR",
	StatusMemAlloc:    "MEMALLOC_ERROR",
	StatusMemFree:     "MEMFREE_ERROR",
	StatusInvalidType: "INVALID_TYPE_ERROR",
	StatusInvalidSize: "INVALID_SIZE_ERROR",
	StatusTableFull:   "TABLE_FULL_ERROR",
	StatusDNE:         "DNE_ERROR",
	StatusOOB:         "OOB_ERROR",
	StatusRefInUse:    "REF_IN_USE_ERROR",
	StatusInvalidRef:  "INVALID_REF_ERROR",
	StatusInvalidData: "INVALID_DATA_ERROR",
	StatusTimeout:     "TIMEOUT_ERROR",
	StatusFile:        "FILE_ERROR",
	StatusRead:        "READ_ERROR",
	StatusWrite:       "WRITE_ERROR",
	StatusCRC:         "CRC_ERROR",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN_STATUS"
}

func kindStatus(k Kind) Status {
	switch k {
	case KindNilPointer:
		return StatusNullPtr
	case KindAllocation:
		return StatusMemAlloc
	case KindInvalidFree:
		return StatusMemFree
	case KindTypeMismatch:
		return StatusInvalidType
	case KindInvalidSize:
		return StatusInvalidSize
	case KindTableFull:
		return StatusTableFull
	case KindNotFound:
		return StatusDNE
	case KindOutOfBounds:
		return StatusOOB
	case KindRefInUse:
		return StatusRefInUse
	case KindInvalidRef:
		return StatusInvalidRef
	case KindInvalidData:
		return StatusInvalidData
	case KindTimeout:
		return StatusTimeout
	case KindFile:
		return StatusFile
	case KindRead:
		return StatusRead
	case KindWrite:
		return StatusWrite
	case KindChecksum:
		return StatusCRC
	default:
		return StatusErr
	}
}

// StatusOf maps any error onto the status taxonomy. A nil error is Success,
// errors that are not (and do not wrap) an *Error are Err.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return StatusErr
}
